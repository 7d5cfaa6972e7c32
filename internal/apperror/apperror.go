// Package apperror defines the error kinds surfaced by the service layer.
// Handlers translate them into HTTP responses with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrPermission     = errors.New("permission denied")
	ErrEmptyCart      = errors.New("empty cart")
	ErrSourceNotFound = errors.New("source not found")
)

// AppError carries a kind (Err), a human readable message and optionally the
// input field that caused it.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %s", resource, message),
	}
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with id %v does not exist", resource, id),
	}
}

// DoesNotExist reports a missing relation row rather than a missing entity
func DoesNotExist(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s does not exist", resource),
	}
}

// Forbidden is returned when the caller is authenticated but may not act on
// the resource.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrPermission,
		Message: message,
	}
}

func EmptyCart() *AppError {
	return &AppError{
		Err:     ErrEmptyCart,
		Message: "shopping cart is empty, nothing to export",
	}
}

func SourceNotFound(path string) *AppError {
	return &AppError{
		Err:     ErrSourceNotFound,
		Message: fmt.Sprintf("%s does not exist", path),
		Field:   path,
	}
}

// FieldOf returns the offending field of an AppError anywhere in the chain.
func FieldOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
