package service

import (
	"context"
	"strings"

	"inkpost/internal/models"
	"inkpost/internal/policy"
	"inkpost/internal/repository"
)

type CategoryService struct {
	categories repository.CategoryRepository
}

type CategoryInput struct {
	Name        string
	Description string
	Active      *bool
}

func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// ListCategories returns active categories. Admins may include inactive ones.
func (s *CategoryService) ListCategories(ctx context.Context, viewer *models.Account, includeInactive bool) ([]*models.Category, error) {
	return s.categories.List(ctx, includeInactive && viewer.IsAdmin())
}

// GetCategory looks a category up by slug. Inactive categories are hidden from non-admins.
func (s *CategoryService) GetCategory(ctx context.Context, viewer *models.Account, slug string) (*models.Category, error) {
	category, err := s.categories.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if !category.Active && !viewer.IsAdmin() {
		return nil, models.NewNotFoundError("Category", slug)
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, actor *models.Account, in CategoryInput) (*models.Category, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	category := &models.Category{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Active:      true,
	}
	if in.Active != nil {
		category.Active = *in.Active
	}
	if err := models.ApplyTransforms(category, models.SlugifyCategory); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames, re-describes or (de)activates a category. A rename derives a new slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, actor *models.Account, id uint, in CategoryInput) (*models.Category, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		category.Name = in.Name
	}
	if in.Description != "" {
		category.Description = strings.TrimSpace(in.Description)
	}
	if in.Active != nil {
		category.Active = *in.Active
	}
	if err := models.ApplyTransforms(category, models.SlugifyCategory); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	if err := s.categories.RecountPosts(ctx, id); err != nil {
		return nil, err
	}
	return s.categories.GetByID(ctx, id)
}

// DeleteCategory removes a category that no post references.
func (s *CategoryService) DeleteCategory(ctx context.Context, actor *models.Account, id uint) error {
	if err := policy.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	inUse, err := s.categories.HasPosts(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return models.NewValidationError("Category still has posts")
	}
	return s.categories.Delete(ctx, id)
}

// RecountAll recomputes every category's post count.
func (s *CategoryService) RecountAll(ctx context.Context) error {
	return s.categories.RecountAll(ctx)
}
