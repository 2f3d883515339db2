package server

import (
	"inkpost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.engagementService.AddLike(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post liked", state)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.engagementService.RemoveLike(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Post unliked", state)
}

// GetLikeStatus handles GET /api/posts/:id/like
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	state, err := s.engagementService.LikeStatus(c.UserContext(), currentAccount(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "", state)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.engagementService.AddComment(c.UserContext(), currentAccount(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Comment added", res)
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	comments, err := s.engagementService.ListComments(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return respond(c, fiber.StatusOK, "", comments)
}
