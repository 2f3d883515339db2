package server

import (
	"inkpost/internal/middleware"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.profile(),
	})
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Account created", res)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful", res)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), middleware.CurrentClaims(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Logged out", nil)
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", currentAccount(c))
}

// UpdateProfile handles PUT /api/auth/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	account, err := s.authService.UpdateProfile(c.UserContext(), currentAccount(c), req.profile())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Profile updated", account)
}

// ChangePassword handles PUT /api/auth/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.ChangePassword(c.UserContext(), currentAccount(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, "Password changed", nil)
}
