package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

var (
	// ErrNotFound is returned when an id-based lookup finds nothing.
	ErrNotFound = errors.New("not found")
	// ErrNotAllotted is returned when removing an address the resident does not hold.
	ErrNotAllotted = fmt.Errorf("%w: resident is not allotted to address", ErrNotFound)
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports input that violates a model invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError wraps failures of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// wrap classifies a gorm error into the store's error kinds.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var ve *ValidationError
	var se *StorageError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.As(err, &ve), errors.As(err, &se):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, model.ErrInvalidValue):
		return &ValidationError{Reason: err.Error()}
	}
	return &StorageError{Op: op, Err: err}
}

// isUniqueViolation catches drivers that do not translate errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// likePattern builds a lower-cased substring pattern for LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
