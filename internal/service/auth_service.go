package service

import (
	"context"
	"errors"
	"time"

	"inkpost/internal/auth"
	"inkpost/internal/featureflags"
	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs credential assertions for an account.
type TokenIssuer interface {
	Issue(accountID uint) (auth.IssuedToken, error)
}

// TokenRevoker forgets a token id until its expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// AuthService handles registration, login and the caller's own account.
type AuthService struct {
	accounts    repository.AccountRepository
	hasher      *auth.Hasher
	tokens      TokenIssuer
	revocations TokenRevoker
	flags       *featureflags.Manager
	now         func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  models.Profile
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is an account together with a freshly issued token.
type AuthResult struct {
	Account   *models.Account `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func NewAuthService(
	accounts repository.AccountRepository,
	hasher *auth.Hasher,
	tokens TokenIssuer,
	revocations TokenRevoker,
	flags *featureflags.Manager,
) *AuthService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultCost)
	}
	return &AuthService{
		accounts:    accounts,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		flags:       flags,
		now:         time.Now,
	}
}

// Register creates an active user account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !s.flags.EnabledOr(featureflags.Registration, 0, true) {
		return nil, models.NewForbiddenError("Registration is currently closed")
	}
	if in.Password == "" {
		return nil, models.NewFieldValidationError("password", "Password is required")
	}

	account := &models.Account{
		Username:    in.Username,
		Email:       in.Email,
		Role:        models.RoleUser,
		Active:      true,
		Profile:     in.Profile,
		NewPassword: in.Password,
	}
	if err := models.ApplyTransforms(account, models.NormalizeAccount, s.hasher.PasswordTransform()); err != nil {
		return nil, hashError("password", err)
	}

	taken, err := s.accounts.EmailTaken(ctx, account.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateError("email", "Email is already registered")
	}
	taken, err = s.accounts.UsernameTaken(ctx, account.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewDuplicateError("username", "Username is already taken")
	}

	// The unique indexes still decide races between the checks above and the insert.
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return s.issue(account)
}

// Login verifies credentials and stamps the last-login time.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	account, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			observability.AuthFailures.WithLabelValues("unknown_account").Inc()
			return nil, models.NewUnauthenticatedError("Invalid credentials")
		}
		return nil, err
	}
	if !auth.VerifyPassword(in.Password, account.PasswordHash) {
		observability.AuthFailures.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	if !account.Active {
		observability.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, models.NewUnauthenticatedError("Account is deactivated")
	}

	now := s.now().UTC()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLoginAt = &now

	return s.issue(account)
}

func (s *AuthService) issue(account *models.Account) (*AuthResult, error) {
	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Account: account, Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if s.revocations == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.JTI, claims.ExpiresAt)
}

// UpdateProfile replaces the caller's profile fields. Identity, role and credentials are not touched.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.Account, profile models.Profile) (*models.Account, error) {
	if actor == nil {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := s.accounts.UpdateProfile(ctx, actor.ID, profile); err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, actor.ID)
}

// ChangePassword stores a new hash once the current password has been confirmed.
func (s *AuthService) ChangePassword(ctx context.Context, actor *models.Account, current, next string) error {
	if actor == nil {
		return models.NewUnauthenticatedError("Authentication required")
	}
	if next == "" {
		return models.NewFieldValidationError("new_password", "New password is required")
	}

	stored, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(current, stored.PasswordHash) {
		return models.NewFieldValidationError("current_password", "Current password is incorrect")
	}

	stored.NewPassword = next
	if err := models.ApplyTransforms(stored, s.hasher.PasswordTransform()); err != nil {
		return hashError("new_password", err)
	}
	return s.accounts.UpdatePasswordHash(ctx, stored.ID, stored.PasswordHash)
}

// hashError reports a password bcrypt refuses as a field error and anything else as internal.
func hashError(field string, err error) error {
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.NewFieldValidationError(field, "Password must be at most 72 bytes")
	}
	return models.NewInternalError(err)
}
