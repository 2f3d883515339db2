package repository

import (
	"context"

	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, includeInactive bool) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	HasPosts(ctx context.Context, id uint) (bool, error)
	RecountPosts(ctx context.Context, id uint) error
	RecountAll(ctx context.Context) error
}

// categoryRepository implements CategoryRepository
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return duplicateCategoryOr(err)
	}
	return nil
}

func duplicateCategoryOr(err error) error {
	if field, ok := uniqueViolation(err); ok {
		if field == "" {
			field = "name"
		}
		return models.NewDuplicateError(field, "Category "+field+" already exists")
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, notFoundOr(err, "Category", slug)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, includeInactive bool) ([]*models.Category, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	var categories []*models.Category
	if err := q.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"active":      category.Active,
		})
	if res.Error != nil {
		return duplicateCategoryOr(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", category.ID)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	return nil
}

func (r *categoryRepository) HasPosts(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("category_id = ?", id).Count(&count).Error
	return count > 0, err
}

// RecountPosts recomputes post_count from the published posts in the category.
func (r *categoryRepository) RecountPosts(ctx context.Context, id uint) error {
	defer observability.TrackQuery("recount", "categories")()

	return r.db.WithContext(ctx).Exec(
		`UPDATE categories SET post_count = (
			SELECT COUNT(*) FROM posts WHERE posts.category_id = ? AND posts.status = ?
		) WHERE id = ?`,
		id, models.PostStatusPublished, id,
	).Error
}

// RecountAll recomputes post_count for every category.
func (r *categoryRepository) RecountAll(ctx context.Context) error {
	defer observability.TrackQuery("recount_all", "categories")()

	return r.db.WithContext(ctx).Exec(
		`UPDATE categories SET post_count = (
			SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id AND posts.status = ?
		)`,
		models.PostStatusPublished,
	).Error
}
