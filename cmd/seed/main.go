// Command seed populates the database with demo categories, accounts, posts and engagement.
package main

import (
	"context"
	"flag"
	"log"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/observability"
	"inkpost/internal/seed"
)

func main() {
	numAccounts := flag.Int("accounts", 25, "Number of accounts to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxLikes := flag.Int("max-likes", 10, "Maximum like attempts per post")
	maxComments := flag.Int("max-comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetEnvironment(cfg.Env)

	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		Accounts:   *numAccounts,
		Posts:      *numPosts,
		MaxLikes:   *maxLikes,
		MaxComment: *maxComments,
		Clean:      *shouldClean,
		RandomSeed: *randomSeed,
	})

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d categories, %d accounts, %d posts, %d likes, %d comments",
		sum.Categories, sum.Accounts, sum.Posts, sum.Likes, sum.Comments)
	log.Printf("All seeded accounts use the password: %s", seed.DefaultPassword)
}
