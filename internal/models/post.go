package models

import (
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post is the content aggregate. Likes and comments belong to exactly one post and are
// removed together with it.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:100;not null" json:"title"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CategoryID uint       `gorm:"not null;index" json:"category_id"`
	Category   *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID   uint       `gorm:"not null;index" json:"author_id"`
	Author     *Account   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Status     PostStatus `gorm:"size:16;not null;default:published;index" json:"status"`
	ViewCount  int64      `gorm:"not null;default:0" json:"view_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64 `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64     `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OwnerOf reports whether actorID authored the post.
func (p *Post) OwnerOf(actorID uint) bool {
	return p != nil && actorID != 0 && p.AuthorID == actorID
}

// CountsTowardCategory reports whether the post contributes to its category's post count.
func (p *Post) CountsTowardCategory() bool {
	return p.Status == PostStatusPublished
}

// Like records that an account liked a post. The pair (PostID, AccountID) is unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_account" json:"post_id"`
	AccountID uint      `gorm:"not null;uniqueIndex:idx_likes_post_account;index" json:"account_id"`
	CreatedAt time.Time `json:"liked_at"`
}

// Comment is an append-only remark on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AccountID uint      `gorm:"not null" json:"account_id"`
	Account   *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
