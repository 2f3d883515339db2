package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkpost/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextMiddlewareAndStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := observability.Logger
	observability.Logger = observability.NewLogger(&buf, "production")
	t.Cleanup(func() { observability.Logger = prev })

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, uint(7))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/ping", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(observability.RequestIDKey).(string)
		uid, _ := c.UserContext().Value(observability.UserIDKey).(uint)
		assert.NotEmpty(t, rid)
		assert.Equal(t, uint(7), uid)
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"request processed"`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, `"user_id":7`)
	assert.Contains(t, out, `"path":"/ping"`)
}
