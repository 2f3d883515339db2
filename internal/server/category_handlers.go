package server

import (
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
// Admins may pass include_inactive=true.
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.UserContext(), currentAccount(c), c.QueryBool("include_inactive", false))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "", categories)
}

// GetCategory handles GET /api/categories/:slug
func (s *Server) GetCategory(c *fiber.Ctx) error {
	category, err := s.categoryService.GetCategory(c.UserContext(), currentAccount(c), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "", category)
}

// CreateCategory handles POST /api/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	category, err := s.categoryService.CreateCategory(c.UserContext(), currentAccount(c), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Category created", category)
}

// UpdateCategory handles PUT /api/categories/:id
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req categoryUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	category, err := s.categoryService.UpdateCategory(c.UserContext(), currentAccount(c), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Category updated", category)
}

// DeleteCategory handles DELETE /api/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.DeleteCategory(c.UserContext(), currentAccount(c), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Category deleted", nil)
}
