package service

import (
	"context"

	"inkpost/internal/models"
	"inkpost/internal/policy"
	"inkpost/internal/repository"
)

// AccountAdminService changes roles and activation. The HTTP routes go through the
// admin checks; the *ByUsername variants serve the operator CLI, which has no actor.
type AccountAdminService struct {
	accounts repository.AccountRepository
}

func NewAccountAdminService(accounts repository.AccountRepository) *AccountAdminService {
	return &AccountAdminService{accounts: accounts}
}

// SetRole changes the role of account id.
func (s *AccountAdminService) SetRole(ctx context.Context, actor *models.Account, id uint, role models.Role) (*models.Account, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, models.NewFieldValidationError("role", "Role must be user or admin")
	}
	if actor.ID == id {
		return nil, models.NewValidationError("You cannot change your own role")
	}
	if err := s.accounts.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, id)
}

// SetActive activates or deactivates account id. A deactivated account fails authentication
// on its next request even while holding an unexpired token.
func (s *AccountAdminService) SetActive(ctx context.Context, actor *models.Account, id uint, active bool) (*models.Account, error) {
	if err := policy.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, models.NewValidationError("You cannot change your own activation")
	}
	if err := s.accounts.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, id)
}

func (s *AccountAdminService) SetRoleByUsername(ctx context.Context, username string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, models.NewFieldValidationError("role", "Role must be user or admin")
	}
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetRole(ctx, account.ID, role); err != nil {
		return nil, err
	}
	account.Role = role
	return account, nil
}

func (s *AccountAdminService) SetActiveByUsername(ctx context.Context, username string, active bool) (*models.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SetActive(ctx, account.ID, active); err != nil {
		return nil, err
	}
	account.Active = active
	return account, nil
}

func (s *AccountAdminService) ListAdmins(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.ListByRole(ctx, models.RoleAdmin)
}
