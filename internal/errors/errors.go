package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// SrcError is the structured error type for srcfind.
// It carries what the CLI needs to print a useful message and what the
// logger needs to record a searchable one.
type SrcError struct {
	// Code is the unique error code (e.g., "ERR_201_PATH_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SrcError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SrcError) Unwrap() error {
	return e.Cause
}

// Is matches another SrcError by code, so errors.Is works against
// sentinel values built with New.
func (e *SrcError) Is(target error) bool {
	if t, ok := target.(*SrcError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SrcError) WithDetail(key, value string) *SrcError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SrcError) WithSuggestion(suggestion string) *SrcError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SrcError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SrcError {
	return &SrcError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SrcError from an existing error.
// The error's message becomes the SrcError message.
func Wrap(code string, err error) *SrcError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SrcError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// PathError classifies a file system error on path into the matching IO code.
func PathError(path string, cause error) *SrcError {
	switch {
	case errors.Is(cause, fs.ErrNotExist):
		return New(ErrCodePathNotFound, fmt.Sprintf("path not found: %s", path), cause).
			WithDetail("path", path).
			WithSuggestion("Check the path, or run from inside the project directory")
	case errors.Is(cause, fs.ErrPermission):
		return New(ErrCodePermission, fmt.Sprintf("permission denied: %s", path), cause).
			WithDetail("path", path)
	default:
		return New(ErrCodeReadFailed, fmt.Sprintf("cannot read %s", path), cause).
			WithDetail("path", path)
	}
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SrcError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SrcError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var se *SrcError
	if errors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SrcError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *SrcError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SrcError anywhere in the chain.
func GetCategory(err error) Category {
	var se *SrcError
	if errors.As(err, &se) {
		return se.Category
	}
	return ""
}
