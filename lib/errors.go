package lib

import (
	"catalog_server/structs"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// ValidationError is a structured validation error
type ValidationError struct {
	Message string               `json:"message"`
	Errors  []structs.FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Errors) > 0 {
		return e.Errors[0].Field + " " + e.Errors[0].Message
	}
	return "validation failed"
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Errors:  []structs.FieldError{{Field: field, Message: message}},
	}
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError wraps a persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UploadError is a rejected file (type, size or count).
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status declared for err, 500 when it has none.
func StatusCode(err error) int {
	var ve *ValidationError
	var nf *NotFoundError
	var ue *UploadError
	switch {
	case errors.As(err, &ve), errors.As(err, &ue):
		return http.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapPgError wraps driver errors from either supported driver into a StorageError.
func MapPgError(op string, err error) error {
	if err == nil {
		return nil
	}

	var code string
	var pgErr pgdriver.Error
	var pgxErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Field('C') // SQLSTATE
	case errors.As(err, &pgxErr):
		code = pgxErr.Code
	}

	switch code {
	case "23505": // unique_violation
		err = fmt.Errorf("%w: %w", ErrConflict, err)
	case "P0002": // no_data_found
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return &StorageError{Op: op, Err: err}
}
