package backup

import (
	"errors"
	"fmt"
)

// FormatError reports bytes that are not a journal backup: not a zip container, no
// backup.json, or JSON that cannot be parsed. The message is meant for end users.
type FormatError struct {
	Message string
	Err     error
}

func (e FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not a valid backup: %s: %v", e.Message, e.Err)
	}
	return "not a valid backup: " + e.Message
}

func (e FormatError) Unwrap() error { return e.Err }

// NewFormatError constructs a FormatError.
func NewFormatError(message string, err error) FormatError {
	return FormatError{Message: message, Err: err}
}

// IsFormatError checks if an error is a FormatError (including wrapped errors).
func IsFormatError(err error) bool {
	var fe FormatError
	return errors.As(err, &fe)
}

// SchemaError reports a backup.json that parses but lacks the structurally required
// plants and events lists, or whose state does not fit the journal schema.
type SchemaError struct {
	Message string
}

func (e SchemaError) Error() string {
	return "backup data has the wrong shape: " + e.Message
}

// NewSchemaError constructs a SchemaError.
func NewSchemaError(message string) SchemaError {
	return SchemaError{Message: message}
}

// IsSchemaError checks if an error is a SchemaError (including wrapped errors).
func IsSchemaError(err error) bool {
	var se SchemaError
	return errors.As(err, &se)
}

// WarningKind classifies a non-fatal problem met during export or import.
type WarningKind string

const (
	// WarningMissingBinary: a referenced photo could not be fetched at export time, or
	// a manifest entry points at a file absent from images/.
	WarningMissingBinary WarningKind = "missing_binary"
	// WarningLegacyFormat: images/ exists without images-manifest.json, so photos cannot
	// be mapped back to their keys.
	WarningLegacyFormat WarningKind = "legacy_format"
)

// Warning is a skipped item. Warnings never abort an operation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Key     string      `json:"key,omitempty"`
	Message string      `json:"message"`
}
