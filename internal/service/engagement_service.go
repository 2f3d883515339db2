package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
)

const maxCommentLen = 500

// EngagementService owns the per-post like set and comment list.
type EngagementService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// LikeState is the caller's like status and the post's like count after a mutation.
type LikeState struct {
	PostID    uint  `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// CommentResult is a stored comment and the post's comment count after the append.
type CommentResult struct {
	Comment      *models.Comment `json:"comment"`
	CommentCount int64           `json:"comment_count"`
}

func NewEngagementService(posts repository.PostRepository, comments repository.CommentRepository) *EngagementService {
	return &EngagementService{posts: posts, comments: comments}
}

func (s *EngagementService) requirePost(ctx context.Context, postID uint) error {
	exists, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}

// AddLike adds actor to the post's like set. Liking twice leaves the set unchanged.
func (s *EngagementService) AddLike(ctx context.Context, actor *models.Account, postID uint) (*LikeState, error) {
	if actor == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	added, err := s.posts.AddLike(ctx, postID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !added {
		// Either already liked or the post was deleted after the check above.
		if err := s.requirePost(ctx, postID); err != nil {
			return nil, err
		}
	}
	observability.EngagementMutations.WithLabelValues("like", outcome(added)).Inc()

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{PostID: postID, Liked: true, LikeCount: count}, nil
}

// RemoveLike removes actor from the post's like set. Removing an absent like is not an error.
func (s *EngagementService) RemoveLike(ctx context.Context, actor *models.Account, postID uint) (*LikeState, error) {
	if actor == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	removed, err := s.posts.RemoveLike(ctx, postID, actor.ID)
	if err != nil {
		return nil, err
	}
	observability.EngagementMutations.WithLabelValues("unlike", outcome(removed)).Inc()

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeState{PostID: postID, Liked: false, LikeCount: count}, nil
}

// LikeStatus reports whether viewer likes the post without changing anything.
func (s *EngagementService) LikeStatus(ctx context.Context, viewer *models.Account, postID uint) (*LikeState, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	state := &LikeState{PostID: postID}
	if viewer != nil {
		liked, err := s.posts.HasLiked(ctx, postID, viewer.ID)
		if err != nil {
			return nil, err
		}
		state.Liked = liked
	}
	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	state.LikeCount = count
	return state, nil
}

// AddComment appends a comment by actor to the post.
func (s *EngagementService) AddComment(ctx context.Context, actor *models.Account, postID uint, content string) (*CommentResult, error) {
	if actor == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewFieldValidationError("content", "Comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewFieldValidationError("content", "Comment must be at most 500 characters")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:    postID,
		AccountID: actor.ID,
		Content:   content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Account = actor
	observability.EngagementMutations.WithLabelValues("comment", "changed").Inc()

	count, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &CommentResult{Comment: comment, CommentCount: count}, nil
}

// ListComments returns the post's comments in the order they were added.
func (s *EngagementService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit, offset)
}

func outcome(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}
