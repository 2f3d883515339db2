// Command admin provides account management utilities for operators.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin promote <username>      - Grant the admin role")
	fmt.Println("  admin demote <username>       - Revoke the admin role")
	fmt.Println("  admin deactivate <username>   - Block the account from signing in")
	fmt.Println("  admin activate <username>     - Re-enable a deactivated account")
	fmt.Println("  admin list-admins             - List all admins")
	fmt.Println("  admin recount                 - Recompute category post counts")
	fmt.Println("  admin migrate                 - Apply schema migrations")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	admins := service.NewAccountAdminService(repository.NewAccountRepository(db))
	categories := service.NewCategoryService(repository.NewCategoryRepository(db))

	command := os.Args[1]
	needsUsername := map[string]bool{"promote": true, "demote": true, "deactivate": true, "activate": true}
	if needsUsername[command] && len(os.Args) < 3 {
		fmt.Printf("Usage: admin %s <username>\n", command)
		os.Exit(1)
	}

	switch command {
	case "promote":
		report(admins.SetRoleByUsername(ctx, os.Args[2], models.RoleAdmin))
	case "demote":
		report(admins.SetRoleByUsername(ctx, os.Args[2], models.RoleUser))
	case "deactivate":
		report(admins.SetActiveByUsername(ctx, os.Args[2], false))
	case "activate":
		report(admins.SetActiveByUsername(ctx, os.Args[2], true))
	case "list-admins":
		listAdmins(ctx, admins)
	case "recount":
		if err := categories.RecountAll(ctx); err != nil {
			log.Fatalf("Recount failed: %v", err)
		}
		fmt.Println("Category post counts recomputed")
	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Schema is up to date")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func report(account *models.Account, err error) {
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			fmt.Println(err.Error())
			os.Exit(1)
		}
		log.Fatalf("Update failed: %v", err)
	}
	fmt.Printf("%s (ID: %d) role=%s active=%v\n", account.Username, account.ID, account.Role, account.Active)
}

func listAdmins(ctx context.Context, admins *service.AccountAdminService) {
	accounts, err := admins.ListAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Println("Current admins:")
	for _, a := range accounts {
		fmt.Printf("ID: %d | Username: %s | Email: %s | Active: %v\n", a.ID, a.Username, a.Email, a.Active)
	}
}
