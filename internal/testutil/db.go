// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"inkpost/internal/database"
	"inkpost/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateAccount inserts an active account with the given username and role.
// The password is hashed at bcrypt's minimum cost.
func CreateAccount(t testing.TB, db *gorm.DB, username string, role models.Role, password string) *models.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	acct := &models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := db.Create(acct).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acct
}

// CreateCategory inserts an active category named name.
func CreateCategory(t testing.TB, db *gorm.DB, name string) *models.Category {
	t.Helper()

	cat := &models.Category{Name: name, Slug: models.Slugify(name), Active: true}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return cat
}

// CreatePost inserts a post by author in category with the given status.
func CreatePost(t testing.TB, db *gorm.DB, author *models.Account, category *models.Category, status models.PostStatus) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:      "A post title",
		Content:    "Post content that is long enough.",
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Status:     status,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
