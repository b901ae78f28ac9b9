// Package errors provides a lightweight structured error type (BuildLayoutError)
// for category-based classification in the CLI and in library callers.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Side effects on the host filesystem
	CategoryFileSystem ErrorCategory = "filesystem"

	// Decision audit trail
	CategoryAudit ErrorCategory = "audit"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// BuildLayoutError is a structured error with category, retryability, and context.
type BuildLayoutError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildLayoutError.
type ContextFields map[string]any

func (e *BuildLayoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *BuildLayoutError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *BuildLayoutError) WithContext(key string, value any) *BuildLayoutError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildLayoutError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildLayoutError {
	return &BuildLayoutError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildLayoutError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildLayoutError {
	return &BuildLayoutError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable BuildLayoutError that wraps an existing error.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildLayoutError {
	e := Wrap(err, category, severity, message)
	e.Retryable = true
	return e
}

// As finds the first BuildLayoutError in err's chain.
func As(err error) (*BuildLayoutError, bool) {
	var ble *BuildLayoutError
	if stdErrors.As(err, &ble) {
		return ble, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if ble, ok := As(err); ok {
		return ble.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if ble, ok := As(err); ok {
		return ble.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if err carries no BuildLayoutError.
func GetCategory(err error) ErrorCategory {
	if ble, ok := As(err); ok {
		return ble.Category
	}
	return CategoryInternal
}
