package repository

import (
	"context"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. A nil Status lists published posts.
type PostFilter struct {
	CategoryID *uint
	AuthorID   *uint
	Status     *models.PostStatus
	Limit      int
	Offset     int
}

// PostChanges carries the author-editable fields of a post.
type PostChanges struct {
	Title      string
	Content    string
	CategoryID uint
	Status     models.PostStatus
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, id uint, changes PostChanges) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	AddLike(ctx context.Context, postID, accountID uint) (bool, error)
	RemoveLike(ctx context.Context, postID, accountID uint) (bool, error)
	HasLiked(ctx context.Context, postID, accountID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := applyPostCounts(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	status := models.PostStatusPublished
	if filter.Status != nil {
		status = *filter.Status
	}

	q := applyPostCounts(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Where("posts.status = ?", status)
	if filter.CategoryID != nil {
		q = q.Where("posts.category_id = ?", *filter.CategoryID)
	}
	if filter.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *filter.AuthorID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var posts []*models.Post
	if err := q.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// applyPostCounts adds subqueries to fetch like and comment counts in a single query.
func applyPostCounts(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count")
}

func (r *postRepository) Update(ctx context.Context, id uint, changes PostChanges) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       changes.Title,
			"content":     changes.Content,
			"category_id": changes.CategoryID,
			"status":      changes.Status,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes the post together with its likes and comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	defer observability.TrackQuery("increment_views", "posts")()

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// AddLike inserts the (post, account) pair if absent. The boolean reports whether a row was added.
func (r *postRepository) AddLike(ctx context.Context, postID, accountID uint) (bool, error) {
	defer observability.TrackQuery("insert", "likes")()

	// The insert only happens while the post exists; ON CONFLICT keeps repeat likes idempotent.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (post_id, account_id, created_at) `+
			`SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM posts WHERE id = ?) `+
			`ON CONFLICT (post_id, account_id) DO NOTHING`,
		postID, accountID, time.Now().UTC(), postID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveLike deletes the (post, account) pair. The boolean reports whether a row was removed.
func (r *postRepository) RemoveLike(ctx context.Context, postID, accountID uint) (bool, error) {
	defer observability.TrackQuery("delete", "likes")()

	res := r.db.WithContext(ctx).
		Where("post_id = ? AND account_id = ?", postID, accountID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) HasLiked(ctx context.Context, postID, accountID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND account_id = ?", postID, accountID).
		Count(&count).Error
	return count > 0, err
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
