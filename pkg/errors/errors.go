// Package errors defines the typed errors services return to handlers.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies an AppError for the transport layer.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError carries a classified failure out of the service layer.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation reports bad caller input.
func NewValidation(message string) error {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

func NewNotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

func NewConflict(message string, err error) error {
	return &AppError{Type: ErrorTypeConflict, Message: message, Err: err}
}

func NewInternal(message string, err error) error {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// Wrap prefixes message onto err. An AppError keeps its type; anything else
// becomes Internal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == t
}

func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool   { return isType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool   { return isType(err, ErrorTypeConflict) }
func IsInternal(err error) bool   { return isType(err, ErrorTypeInternal) }
