package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkpost/internal/auth"
	"inkpost/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accountStoreStub is an in-memory AccountStore.
type accountStoreStub struct {
	accounts map[uint]*models.Account
	touchErr error
	touched  []uint
}

func (s *accountStoreStub) GetByID(_ context.Context, id uint) (*models.Account, error) {
	acct, ok := s.accounts[id]
	if !ok {
		return nil, models.NewNotFoundError("Account", id)
	}
	cp := *acct
	return &cp, nil
}

func (s *accountStoreStub) TouchLastLogin(_ context.Context, id uint, _ time.Time) error {
	s.touched = append(s.touched, id)
	return s.touchErr
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGateFixture(t *testing.T) (*fiber.App, *auth.TokenService, *accountStoreStub, *clock, *auth.RevocationStore) {
	t.Helper()

	clk := &clock{t: time.Now()}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:   "middleware-test-secret",
		TTL:      time.Hour,
		Issuer:   "inkpost-api",
		Audience: "inkpost-client",
	}, auth.WithClock(clk.now))
	require.NoError(t, err)

	store := &accountStoreStub{accounts: map[uint]*models.Account{
		1: {ID: 1, Username: "alice", Role: models.RoleUser, Active: true},
		2: {ID: 2, Username: "bob", Role: models.RoleUser, Active: false},
		3: {ID: 3, Username: "root", Role: models.RoleAdmin, Active: true},
	}}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	revocations := auth.NewRevocationStore(rdb)

	gate := NewAuthenticator(tokens, store, revocations)

	app := fiber.New()
	app.Get("/private", gate.Required(), func(c *fiber.Ctx) error {
		acct := CurrentAccount(c)
		return c.JSON(fiber.Map{"user_id": c.Locals(LocalUserID), "username": acct.Username})
	})
	app.Get("/public", gate.Optional(), func(c *fiber.Ctx) error {
		acct := CurrentAccount(c)
		if acct == nil {
			return c.JSON(fiber.Map{"username": ""})
		}
		return c.JSON(fiber.Map{"username": acct.Username})
	})
	app.Get("/admin", gate.Required(), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	return app, tokens, store, clk, revocations
}

func doGet(t *testing.T, app *fiber.App, path, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body := map[string]interface{}{}
	if resp.StatusCode != fiber.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&body)
	}
	return resp, body
}

func issue(t *testing.T, tokens *auth.TokenService, id uint) auth.IssuedToken {
	t.Helper()
	tok, err := tokens.Issue(id)
	require.NoError(t, err)
	return tok
}

func TestRequired(t *testing.T) {
	app, tokens, store, clk, _ := newGateFixture(t)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "Happy Path", header: "Bearer " + issue(t, tokens, 1).Token, expectedStatus: http.StatusOK},
		{name: "Missing Header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Format", header: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "Garbage Token", header: "Bearer not-a-token", expectedStatus: http.StatusUnauthorized},
		{name: "Unknown Account", header: "Bearer " + issue(t, tokens, 99).Token, expectedStatus: http.StatusUnauthorized},
		{name: "Inactive Account", header: "Bearer " + issue(t, tokens, 2).Token, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		tok := issue(t, tokens, 1)
		clk.t = clk.t.Add(2 * time.Hour)
		defer func() { clk.t = clk.t.Add(-2 * time.Hour) }()

		resp, body := doGet(t, app, "/private", tok.Token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, false, body["success"])
	})

	t.Run("last login stamped", func(t *testing.T) {
		store.touched = nil
		resp, body := doGet(t, app, "/private", issue(t, tokens, 1).Token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, []uint{1}, store.touched)
	})

	t.Run("stamp failure does not block", func(t *testing.T) {
		store.touchErr = errors.New("db down")
		defer func() { store.touchErr = nil }()

		resp, _ := doGet(t, app, "/private", issue(t, tokens, 1).Token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRequired_RevokedToken(t *testing.T) {
	app, tokens, _, _, revocations := newGateFixture(t)
	tok := issue(t, tokens, 1)

	resp, _ := doGet(t, app, "/private", tok.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, revocations.Revoke(context.Background(), tok.JTI, tok.ExpiresAt))

	resp, body := doGet(t, app, "/private", tok.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", body["message"])
}

func TestOptional(t *testing.T) {
	app, tokens, _, _, _ := newGateFixture(t)

	resp, body := doGet(t, app, "/public", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body["username"])

	resp, body = doGet(t, app, "/public", "garbage")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", body["username"])

	resp, body = doGet(t, app, "/public", issue(t, tokens, 1).Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
}

func TestAdminRequired(t *testing.T) {
	app, tokens, _, _, _ := newGateFixture(t)

	resp, _ := doGet(t, app, "/admin", issue(t, tokens, 1).Token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doGet(t, app, "/admin", issue(t, tokens, 3).Token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doGet(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = bearerToken("bearer   abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("Bearer")
	assert.False(t, ok)
	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer a b")
	assert.False(t, ok)
}
