// Package apperrors defines the three disjoint error kinds the planning
// core reports: configuration errors (snapshot build rejection), validation
// errors (bad caller input), and query executor failures. Advisories are
// not errors; they travel on the Plan itself.
package apperrors

import (
	"errors"
	"fmt"
)

// Executor failure kinds. Distinct from validation so callers can tell
// "the query was rejected" apart from "the database is unavailable".
var (
	ErrQueryTimeout  = errors.New("query timed out")
	ErrDBUnavailable = errors.New("database unavailable")
)

// ConfigError marks a snapshot as unpublishable: a prerequisite cycle, a
// malformed rule, or a reference to an unknown course. The previous good
// snapshot keeps serving when a build fails with a ConfigError.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ValidationError reports caller input that the core refuses to process:
// an unknown course code, a malformed grade, or a query AST referencing a
// non-whitelisted table, column or operator. It is always surfaced to the
// caller and never silently coerced to a default.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a named field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
