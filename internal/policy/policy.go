// Package policy decides whether an account may act on a resource.
package policy

import (
	"inkpost/internal/models"
)

// Owned is implemented by resources that have a single owning account.
type Owned interface {
	OwnerOf(actorID uint) bool
}

// CanAccess reports whether actor may modify resource. Admins may modify anything,
// owners may modify what they own, and resources with no owner are admin-only.
func CanAccess(actor *models.Account, resource any) bool {
	if actor == nil || !actor.Active {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if owned, ok := resource.(Owned); ok {
		return owned.OwnerOf(actor.ID)
	}
	return false
}

// Authorize is CanAccess expressed as an error for the service layer.
func Authorize(actor *models.Account, resource any) error {
	if actor == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if !CanAccess(actor, resource) {
		return models.NewForbiddenError("You do not have permission to modify this resource")
	}
	return nil
}

// RequireAdmin guards role-gated operations.
func RequireAdmin(actor *models.Account) error {
	if actor == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if !actor.Active || !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}
