package services

import (
	"errors"
	"fmt"
)

// ValidationError represents rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// NotFoundError represents a missing record.
type NotFoundError struct {
	Field   string
	Message string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Field, e.Message)
}

// NewNotFoundError constructs NotFoundError
func NewNotFoundError(field, message string) NotFoundError {
	return NotFoundError{Field: field, Message: message}
}

// IsNotFoundError checks if error is NotFoundError
func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// ConflictError represents a request that clashes with existing records.
type ConflictError struct {
	Field   string
	Message string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// NewConflictError constructs ConflictError
func NewConflictError(field, message string) ConflictError {
	return ConflictError{Field: field, Message: message}
}

// IsConflictError checks if error is ConflictError
func IsConflictError(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// ErrDerivedEvent rejects direct edits of events generated from a log.
var ErrDerivedEvent = NewConflictError("event", "events generated from a log are edited through the log")

// OversizeInputError rejects payloads above a configured limit.
type OversizeInputError struct {
	What  string
	Size  int64
	Limit int64
}

func (e OversizeInputError) Error() string {
	return fmt.Sprintf("%s is too large: %d bytes exceeds the %d byte limit", e.What, e.Size, e.Limit)
}

// IsOversizeInputError checks if error is OversizeInputError
func IsOversizeInputError(err error) bool {
	var oe OversizeInputError
	return errors.As(err, &oe)
}
