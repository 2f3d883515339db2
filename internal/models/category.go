package models

import (
	"regexp"
	"strings"
	"time"
)

// Category classifies posts. PostCount is a materialized count of published posts and is
// only ever written by a recount query.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:60;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"size:200" json:"description,omitempty"`
	Active      bool      `gorm:"not null" json:"active"`
	PostCount   int64     `gorm:"not null;default:0" json:"post_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrim    = regexp.MustCompile(`^-+|-+$`)
)

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "-")
	return slugTrim.ReplaceAllString(s, "")
}

// SlugifyCategory sets Slug from Name. It runs on every category write so a rename
// always carries a fresh slug.
func SlugifyCategory(c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = Slugify(c.Name)
	if c.Slug == "" {
		return NewValidationError("Category name must contain at least one letter or digit")
	}
	return nil
}
