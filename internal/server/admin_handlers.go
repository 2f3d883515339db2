package server

import (
	"inkpost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var accountID uint
	if account := currentAccount(c); account != nil {
		accountID = account.ID
	}

	return respond(c, fiber.StatusOK, "", fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(accountID),
	})
}

// SetAccountRole handles PUT /api/admin/accounts/:id/role
func (s *Server) SetAccountRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req roleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	account, err := s.adminService.SetRole(c.UserContext(), currentAccount(c), id, models.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Role updated", account)
}

// SetAccountActive handles PUT /api/admin/accounts/:id/active
func (s *Server) SetAccountActive(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req activeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	account, err := s.adminService.SetActive(c.UserContext(), currentAccount(c), id, *req.Active)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Account updated", account)
}
