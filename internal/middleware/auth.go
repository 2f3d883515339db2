// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"inkpost/internal/auth"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the authentication gate.
const (
	LocalAccount = "account"
	LocalUserID  = "userID"
	LocalClaims  = "claims"
)

// TokenVerifier checks a presented token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AccountStore resolves the account named by a token and records the access.
type AccountStore interface {
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// RevocationChecker reports logged-out token ids.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator resolves the Bearer token on a request into an active account.
type Authenticator struct {
	tokens      TokenVerifier
	accounts    AccountStore
	revocations RevocationChecker
	now         func() time.Time
}

// NewAuthenticator builds the gate. revocations may be nil.
func NewAuthenticator(tokens TokenVerifier, accounts AccountStore, revocations RevocationChecker) *Authenticator {
	return &Authenticator{
		tokens:      tokens,
		accounts:    accounts,
		revocations: revocations,
		now:         time.Now,
	}
}

// Required rejects the request with 401 unless it carries a valid token for an active account.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			observability.AuthFailures.WithLabelValues("missing_token").Inc()
			return unauthorized(c, "Authorization header required")
		}

		account, claims, err := a.resolve(c.UserContext(), token)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthenticated {
				return unauthorized(c, appErr.Message)
			}
			return err
		}

		a.attach(c, account, claims)
		return c.Next()
	}
}

// Optional resolves a token when one is presented and otherwise continues anonymously.
// It never rejects the request.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return c.Next()
		}
		account, claims, err := a.resolve(c.UserContext(), token)
		if err == nil {
			a.attach(c, account, claims)
		}
		return c.Next()
	}
}

// AdminRequired must run after Required. Non-admin accounts get 403.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := CurrentAccount(c)
		if account == nil {
			return unauthorized(c, "Authentication required")
		}
		if !account.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(models.Fail("Admin access required"))
		}
		return c.Next()
	}
}

func (a *Authenticator) resolve(ctx context.Context, token string) (*models.Account, *auth.Claims, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		reason := "invalid_token"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired_token"
		}
		observability.AuthFailures.WithLabelValues(reason).Inc()
		return nil, nil, models.NewUnauthenticatedError("Invalid or expired token")
	}

	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, claims.JTI)
		if err != nil {
			observability.Logger.WarnContext(ctx, "token revocation check failed",
				slog.String("error", err.Error()),
			)
		}
		if revoked {
			observability.AuthFailures.WithLabelValues("revoked_token").Inc()
			return nil, nil, models.NewUnauthenticatedError("Token has been revoked")
		}
	}

	account, err := a.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			observability.AuthFailures.WithLabelValues("unknown_account").Inc()
			return nil, nil, models.NewUnauthenticatedError("Account not found")
		}
		return nil, nil, models.NewInternalError(err)
	}
	if !account.Active {
		observability.AuthFailures.WithLabelValues("inactive").Inc()
		return nil, nil, models.NewUnauthenticatedError("Account is deactivated")
	}

	now := a.now().UTC()
	if err := a.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		observability.Logger.WarnContext(ctx, "failed to stamp last login",
			slog.Uint64("account_id", uint64(account.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		account.LastLoginAt = &now
	}

	return account, claims, nil
}

func (a *Authenticator) attach(c *fiber.Ctx, account *models.Account, claims *auth.Claims) {
	c.Locals(LocalAccount, account)
	c.Locals(LocalUserID, account.ID)
	c.Locals(LocalClaims, claims)
	c.SetUserContext(observability.WithUserID(c.UserContext(), account.ID))
}

// CurrentAccount returns the account resolved by the gate, or nil for anonymous requests.
func CurrentAccount(c *fiber.Ctx) *models.Account {
	account, _ := c.Locals(LocalAccount).(*models.Account)
	return account
}

// CurrentClaims returns the verified token claims, or nil for anonymous requests.
func CurrentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.Fail(message))
}
