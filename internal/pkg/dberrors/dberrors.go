package dberrors

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/yigit/campus/internal/pkg/apperrors"
)

// IsUniqueViolation reports whether err is a unique/primary key violation from
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsConstraintViolation reports any integrity constraint failure: unique, not null,
// check or foreign key.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE class 23: integrity_constraint_violation
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// IsUnknownRelation reports a missing table at the engine level.
func IsUnknownRelation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01" // undefined_table
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrError && strings.Contains(liteErr.Error(), "no such table")
	}
	return false
}

// Classify maps a raw driver error onto the store taxonomy. It returns nil for a nil error.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperrors.ErrNotFound
	case IsUniqueViolation(err):
		return apperrors.ErrDuplicateKey
	case IsConstraintViolation(err):
		return apperrors.ErrConstraintViolation
	case IsUnknownRelation(err):
		return apperrors.ErrUnknownTable
	default:
		// connection loss, busy/locked engine, cancelled context and anything
		// else the engine could not complete
		return apperrors.ErrStoreUnavailable
	}
}
