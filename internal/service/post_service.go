package service

import (
	"context"
	"log/slog"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/policy"
	"inkpost/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
}

type CreatePostInput struct {
	Title      string
	Content    string
	CategoryID uint
	Status     models.PostStatus
}

// UpdatePostInput carries the fields to change. Nil fields keep their stored value.
type UpdatePostInput struct {
	Title      *string
	Content    *string
	CategoryID *uint
	Status     *models.PostStatus
}

type ListPostsInput struct {
	CategorySlug string
	CategoryID   *uint
	AuthorID     *uint
	Status       *models.PostStatus
	Limit        int
	Offset       int
}

func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository) *PostService {
	return &PostService{posts: posts, categories: categories}
}

// CreatePost stores a post authored by actor and refreshes the category's post count.
func (s *PostService) CreatePost(ctx context.Context, actor *models.Account, in CreatePostInput) (*models.Post, error) {
	if actor == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	status := in.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	if !status.Valid() {
		return nil, models.NewFieldValidationError("status", "Status must be draft, published or archived")
	}
	if err := s.requireActiveCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		AuthorID:   actor.ID,
		Status:     status,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.recount(ctx, post.CategoryID)

	return s.posts.GetByID(ctx, post.ID)
}

func (s *PostService) requireActiveCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return models.NewFieldValidationError("category_id", "Category is required")
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewFieldValidationError("category_id", "Category does not exist")
		}
		return err
	}
	if !category.Active {
		return models.NewFieldValidationError("category_id", "Category is not active")
	}
	return nil
}

// GetPost counts a view and returns the post. A failed view increment does not fail the read.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	if err := s.posts.IncrementViews(ctx, id); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		observability.Logger.WarnContext(ctx, "failed to increment post views",
			slog.Uint64("post_id", uint64(id)),
			slog.String("error", err.Error()),
		)
	}
	return s.posts.GetByID(ctx, id)
}

// ListPosts lists published posts by default. Other statuses are visible to admins and
// to authors listing their own posts.
func (s *PostService) ListPosts(ctx context.Context, viewer *models.Account, in ListPostsInput) ([]*models.Post, error) {
	filter := repository.PostFilter{
		CategoryID: in.CategoryID,
		AuthorID:   in.AuthorID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}

	if in.Status != nil && *in.Status != models.PostStatusPublished {
		if !in.Status.Valid() {
			return nil, models.NewFieldValidationError("status", "Status must be draft, published or archived")
		}
		if viewer == nil {
			return nil, models.NewUnauthenticatedError("Authentication required")
		}
		ownListing := in.AuthorID != nil && *in.AuthorID == viewer.ID
		if !viewer.IsAdmin() && !ownListing {
			return nil, models.NewForbiddenError("Only published posts are visible to other users")
		}
		filter.Status = in.Status
	}

	if in.CategorySlug != "" {
		category, err := s.categories.GetBySlug(ctx, in.CategorySlug)
		if err != nil {
			return nil, err
		}
		if !category.Active && !viewer.IsAdmin() {
			return nil, models.NewNotFoundError("Category", in.CategorySlug)
		}
		filter.CategoryID = &category.ID
	}

	return s.posts.List(ctx, filter)
}

// UpdatePost applies the changed fields after the ownership check. The author never changes.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.Account, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, post); err != nil {
		return nil, err
	}

	changes := repository.PostChanges{
		Title:      post.Title,
		Content:    post.Content,
		CategoryID: post.CategoryID,
		Status:     post.Status,
	}
	if in.Title != nil {
		changes.Title = *in.Title
	}
	if in.Content != nil {
		changes.Content = *in.Content
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewFieldValidationError("status", "Status must be draft, published or archived")
		}
		changes.Status = *in.Status
	}
	if in.CategoryID != nil && *in.CategoryID != post.CategoryID {
		if err := s.requireActiveCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		changes.CategoryID = *in.CategoryID
	}

	if err := s.posts.Update(ctx, id, changes); err != nil {
		return nil, err
	}

	if changes.CategoryID != post.CategoryID {
		s.recount(ctx, post.CategoryID)
		s.recount(ctx, changes.CategoryID)
	} else if changes.Status != post.Status {
		s.recount(ctx, post.CategoryID)
	}

	return s.posts.GetByID(ctx, id)
}

// DeletePost removes the post with its likes and comments and refreshes the category count.
func (s *PostService) DeletePost(ctx context.Context, actor *models.Account, id uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, post); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.recount(ctx, post.CategoryID)
	return nil
}

// recount refreshes a category's post count. The post write has already committed, so a
// failure here is logged and counted rather than returned.
func (s *PostService) recount(ctx context.Context, categoryID uint) {
	ctx, span := observability.StartSpan(ctx, "category.recount", attribute.Int64("category.id", int64(categoryID)))
	err := s.categories.RecountPosts(ctx, categoryID)
	observability.EndSpan(span, err)
	if err != nil {
		observability.CategoryRecountFailures.Inc()
		observability.Logger.ErrorContext(ctx, "failed to recount category posts",
			slog.Uint64("category_id", uint64(categoryID)),
			slog.String("error", err.Error()),
		)
	}
}
