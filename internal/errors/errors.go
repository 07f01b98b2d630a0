// Package errors provides the structured error type (BuildError) used to
// classify failures across the packaging pipeline and map them to CLI
// presentation and exit codes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing input and configuration errors
	CategoryValidation ErrorCategory = "validation"
	CategoryConfig     ErrorCategory = "config"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryIcon    ErrorCategory = "icon"

	// Staging and packaging errors
	CategoryStaging    ErrorCategory = "staging"
	CategoryToolchain  ErrorCategory = "toolchain"
	CategoryArtifact   ErrorCategory = "artifact"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Everything else
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory reports whether err (or any error it wraps) belongs to category.
func IsCategory(err error, category ErrorCategory) bool {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if no BuildError is found in the chain.
func GetCategory(err error) ErrorCategory {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}

// Validation creates an error for a rejected option value. These surface
// before any filesystem or network work starts.
func Validation(message string) *BuildError {
	return &BuildError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *BuildError {
	return Validation(fmt.Sprintf(format, args...))
}

// Config creates an error for an unusable composed configuration.
func Config(message string) *BuildError {
	return &BuildError{
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  message,
	}
}

// Staging creates an error for a failure while materializing the staging tree.
func Staging(err error, message string) *BuildError {
	return &BuildError{
		Category: CategoryStaging,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// Toolchain creates an error for a bundling toolchain run that exited nonzero.
// The exit code and trailing stderr lines ride along as context.
func Toolchain(message string, exitCode int, stderrTail []string) *BuildError {
	e := &BuildError{
		Category: CategoryToolchain,
		Severity: SeverityError,
		Message:  message,
	}
	e.WithContext("exit_code", exitCode)
	if len(stderrTail) > 0 {
		e.WithContext("stderr_tail", stderrTail)
	}
	return e
}

// ArtifactNotFound creates an error for a toolchain run that succeeded but
// produced nothing at any expected output location.
func ArtifactNotFound(message string, searched []string) *BuildError {
	e := &BuildError{
		Category: CategoryArtifact,
		Severity: SeverityError,
		Message:  message,
	}
	if len(searched) > 0 {
		e.WithContext("searched", searched)
	}
	return e
}

// WrapError wraps an existing error with a new BuildError at SeverityError.
func WrapError(err error, category ErrorCategory, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
