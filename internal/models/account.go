// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// Role is the coarse authority level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is a registered identity with credentials and a role.
type Account struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"size:16;not null;default:user" json:"role"`
	Active       bool       `gorm:"not null" json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	Profile      Profile    `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// NewPassword carries a plaintext password between the request boundary and the
	// password transform. It is never persisted.
	NewPassword string `gorm:"-" json:"-"`
}

// Profile holds the optional, user-editable presentation fields of an account.
type Profile struct {
	FirstName string `gorm:"size:50" json:"first_name,omitempty"`
	LastName  string `gorm:"size:50" json:"last_name,omitempty"`
	Bio       string `gorm:"size:500" json:"bio,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// NormalizeAccount lowercases the email and trims identity fields.
func NormalizeAccount(a *Account) error {
	a.Email = NormalizeEmail(a.Email)
	a.Username = strings.TrimSpace(a.Username)
	if a.Role == "" {
		a.Role = RoleUser
	}
	return nil
}

// NormalizeEmail returns the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
