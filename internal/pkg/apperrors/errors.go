package apperrors

import (
	"errors"
	"fmt"
)

// Store errors. Every Record Store failure unwraps to exactly one of the first three.
var (
	ErrNotFound            = errors.New("record not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStoreUnavailable    = errors.New("store unavailable")

	// ErrDuplicateKey is the unique/primary key subset of ErrConstraintViolation
	ErrDuplicateKey = fmt.Errorf("duplicate key: %w", ErrConstraintViolation)

	// Schema allow-list errors
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyFilter   = errors.New("at least one filter column is required")
	ErrNoChanges     = errors.New("at least one column to change is required")
	ErrNonScalar     = errors.New("filter values must be single values, not lists")
)

// Authentication errors
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrRegistrationClosed  = errors.New("registration is disabled")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrEmailAlreadyExists  = errors.New("email is already registered")
	ErrStudentAlreadyExist = errors.New("student with this ID already exists")
	ErrImageNameTaken      = errors.New("photo name is used by another student")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Entity errors
var (
	ErrAdminNotFound   = fmt.Errorf("admin: %w", ErrNotFound)
	ErrStudentNotFound = fmt.Errorf("student: %w", ErrNotFound)
)

// StoreError carries the failing Record Store operation and table next to the
// classified cause (one of ErrNotFound, ErrConstraintViolation, ErrStoreUnavailable
// or a schema error) and the raw driver error.
type StoreError struct {
	Op    string
	Table string
	Kind  error
	Err   error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Table, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Kind)
}

// Unwrap exposes both the kind and the driver error to errors.Is / errors.As
func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStoreError builds a StoreError
func NewStoreError(op, table string, kind, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Kind: kind, Err: err}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a user-facing validation failure on a field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewConflictError wraps a conflict sentinel with a user-facing message
func NewConflictError(err error, message string) error {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}
