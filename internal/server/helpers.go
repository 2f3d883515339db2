package server

import (
	"errors"
	"log/slog"
	"sort"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/observability"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = respondError(c, models.NewFieldValidationError(param, "Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes and validates a request body. On failure it writes a 400 response and
// returns errResponseWritten.
func parseBody(c *fiber.Ctx, req validation.Validatable) error {
	if err := c.BodyParser(req); err != nil {
		_ = respondError(c, models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	if err := req.Validate(); err != nil {
		_ = respondError(c, err)
		return errResponseWritten
	}
	return nil
}

// parseOptionalUint reads a positive integer query parameter. Absent means nil.
func parseOptionalUint(c *fiber.Ctx, key string) (*uint, error) {
	if c.Query(key) == "" {
		return nil, nil
	}
	v := c.QueryInt(key, 0)
	if v <= 0 {
		return nil, models.NewFieldValidationError(key, "Invalid "+key)
	}
	id := uint(v)
	return &id, nil
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(models.OK(message, data))
}

// respondError writes the failure envelope for err. Validation failures list their fields;
// anything unexpected is logged with its context and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(models.Fail("Validation failed", toFieldErrors(fieldErrs)...))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return c.Status(fiberErr.Code).JSON(models.Fail(fiberErr.Message))
	}

	appErr := models.AsAppError(err)
	status := appErr.Status()
	if status >= fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request failed with internal error",
			slog.String("operation", c.Method()+" "+c.Route().Path),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.Status(status).JSON(models.Fail("Internal server error"))
	}

	var errs []models.FieldError
	if appErr.Field != "" {
		errs = append(errs, models.FieldError{Field: appErr.Field, Message: appErr.Message})
	}
	return c.Status(status).JSON(models.Fail(appErr.Message, errs...))
}

func toFieldErrors(errs validation.Errors) []models.FieldError {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]models.FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, models.FieldError{Field: field, Message: errs[field].Error()})
	}
	return out
}

// ErrorHandler converts anything escaping a handler, including recovered panics, into the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func currentAccount(c *fiber.Ctx) *models.Account {
	return middleware.CurrentAccount(c)
}
