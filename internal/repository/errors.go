// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"inkpost/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// uniqueViolation reports whether err is a unique-constraint failure and, when it can tell,
// which column was violated.
func uniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		return columnFromConstraint(pgErr.ConstraintName), true
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	// SQLite: "UNIQUE constraint failed: accounts.email"
	msg := err.Error()
	if idx := strings.Index(msg, "UNIQUE constraint failed:"); idx >= 0 {
		rest := strings.TrimSpace(msg[idx+len("UNIQUE constraint failed:"):])
		rest = strings.SplitN(rest, ",", 2)[0]
		if dot := strings.LastIndex(rest, "."); dot >= 0 {
			rest = rest[dot+1:]
		}
		return rest, true
	}
	return "", false
}

// columnFromConstraint maps GORM's idx_<table>_<column> naming back to the column.
func columnFromConstraint(name string) string {
	for _, col := range []string{"username", "email", "slug", "name"} {
		if strings.HasSuffix(name, "_"+col) {
			return col
		}
	}
	return ""
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
