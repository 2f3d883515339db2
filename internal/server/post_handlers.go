package server

import (
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postPage struct {
	Posts  []*models.Post `json:"posts"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// GetPosts handles GET /api/posts
// Query: category (slug), category_id, author_id, status, limit, offset.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	categoryID, err := parseOptionalUint(c, "category_id")
	if err != nil {
		return respondError(c, err)
	}
	authorID, err := parseOptionalUint(c, "author_id")
	if err != nil {
		return respondError(c, err)
	}

	in := service.ListPostsInput{
		CategorySlug: c.Query("category"),
		CategoryID:   categoryID,
		AuthorID:     authorID,
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if status := c.Query("status"); status != "" {
		st := models.PostStatus(status)
		in.Status = &st
	}

	posts, err := s.postService.ListPosts(c.UserContext(), currentAccount(c), in)
	if err != nil {
		return respondError(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return respond(c, fiber.StatusOK, "", postPage{Posts: posts, Limit: page.Limit, Offset: page.Offset})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "", post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), currentAccount(c), service.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Status:     models.PostStatus(req.Status),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Post created", post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	in := service.UpdatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
	}
	if req.Status != nil {
		st := models.PostStatus(*req.Status)
		in.Status = &st
	}

	post, err := s.postService.UpdatePost(c.UserContext(), currentAccount(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post updated", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentAccount(c), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post deleted", nil)
}
