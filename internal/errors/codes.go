// Package errors provides structured error handling for srcfind.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (paths, files, watches)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file system errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the command cannot run at all.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates the operation ran but produced nothing useful.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"
	ErrCodeConfigExists     = "ERR_104_CONFIG_EXISTS"

	// IO errors (200-299)
	ErrCodePathNotFound  = "ERR_201_PATH_NOT_FOUND"
	ErrCodePermission    = "ERR_202_PERMISSION_DENIED"
	ErrCodeReadFailed    = "ERR_203_READ_FAILED"
	ErrCodeWriteFailed   = "ERR_204_WRITE_FAILED"
	ErrCodeWatchFailed   = "ERR_205_WATCH_FAILED"
	ErrCodeLogNotFound   = "ERR_206_LOG_NOT_FOUND"
	ErrCodeNoSourceFiles = "ERR_207_NO_SOURCE_FILES"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPattern = "ERR_402_INVALID_PATTERN"
	ErrCodeInvalidPath    = "ERR_403_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal  = "ERR_501_INTERNAL"
	ErrCodeProfiling = "ERR_502_PROFILING_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "1" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeConfigInvalid, ErrCodeConfigPermission:
		return SeverityFatal
	case ErrCodeNoSourceFiles:
		return SeverityWarning
	default:
		return SeverityError
	}
}
