package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkpost/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "?limit=5&offset=10", 5, 10},
		{"zero limit falls back", "?limit=0", 20, 0},
		{"limit capped", "?limit=1000", maxPaginationLimit, 0},
		{"negative offset clamped", "?offset=-3", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 20)
				return c.SendStatus(fiber.StatusNoContent)
			})

			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		fields  []string
	}{
		{
			name:    "field validation",
			err:     models.NewFieldValidationError("title", "Title is too short"),
			status:  http.StatusBadRequest,
			message: "Title is too short",
			fields:  []string{"title"},
		},
		{
			name:    "rule errors",
			err:     validation.Errors{"title": errors.New("cannot be blank"), "content": errors.New("cannot be blank")},
			status:  http.StatusBadRequest,
			message: "Validation failed",
			fields:  []string{"content", "title"},
		},
		{
			name:    "not found",
			err:     models.NewNotFoundError("Post", 7),
			status:  http.StatusNotFound,
			message: "Post with ID 7 not found",
		},
		{
			name:    "fiber error",
			err:     fiber.ErrMethodNotAllowed,
			status:  http.StatusMethodNotAllowed,
			message: "Method Not Allowed",
		},
		{
			name:    "unexpected error is masked",
			err:     errors.New("pq: connection refused to 10.0.0.3"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := errorApp(tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var env envelope
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)

			var fields []string
			for _, e := range env.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestParseBodyRejectsMalformedJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var req commentRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
