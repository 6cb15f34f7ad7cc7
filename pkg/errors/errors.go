package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile       ErrorCategory = "file"
	CategoryParse      ErrorCategory = "parse"
	CategorySchema     ErrorCategory = "schema"
	CategoryCoercion   ErrorCategory = "coercion"
	CategoryConfig     ErrorCategory = "configuration"
	CategoryProcessing ErrorCategory = "processing"
	CategoryExport     ErrorCategory = "export"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeUnsupportedExt ErrorCode = "unsupported_extension"

	// Parse / schema errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeEmptyTable    ErrorCode = "empty_table"

	// Coercion codes (non-fatal by policy; callers absorb and count)
	CodeCoercionFallback ErrorCode = "coercion_fallback"
	CodeUnparsedDate     ErrorCode = "unparsed_date"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Processing errors
	CodeEmptyResult     ErrorCode = "empty_result"
	CodeProcessingError ErrorCode = "processing_error"

	// Export errors
	CodeSheetLimit  ErrorCode = "sheet_limit"
	CodeWriteFailed ErrorCode = "write_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategorySchema, CategoryCoercion:
		return 3
	case CategoryConfig:
		return 4
	case CategoryProcessing, CategoryExport, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// IsFatal reports whether the error must abort the current operation.
// Coercion and empty-result conditions are absorbed by callers.
func (e *ReconcilerError) IsFatal() bool {
	switch e.Code {
	case CodeCoercionFallback, CodeUnparsedDate, CodeEmptyResult:
		return false
	}
	return true
}

// WithContext adds context information to the error
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconcilerError
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ReconcilerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and re-export it from the source system"
	case CodeUnsupportedExt:
		message = fmt.Sprintf("unsupported file type: %s", path)
		suggestion = "provide a .csv or .xlsx file"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// SchemaError reports every required column missing from a table, together
// with the columns that were actually detected. It is always fatal: the
// pipeline never joins against an incomplete schema.
func SchemaError(role string, missing, detected []string) *ReconcilerError {
	message := fmt.Sprintf("%s file is missing required column(s): %s",
		role, strings.Join(missing, ", "))

	return New(CategorySchema, CodeMissingColumn, message).
		WithSuggestion(fmt.Sprintf("rename or add the missing columns; detected columns: %s",
			strings.Join(detected, ", "))).
		WithContext("role", role).
		WithContext("missing_columns", missing).
		WithContext("detected_columns", detected)
}

// CoercionWarning reports a cell that failed numeric or date parsing and was
// coerced to a safe default. Non-fatal; callers count these and continue.
func CoercionWarning(code ErrorCode, column string, row int, value string) *ReconcilerError {
	var message string
	switch code {
	case CodeUnparsedDate:
		message = fmt.Sprintf("unparsable date in column '%s' row %d: '%s' (period left empty)", column, row, value)
	default:
		message = fmt.Sprintf("unparsable value in column '%s' row %d: '%s' (coerced to 0)", column, row, value)
	}

	return New(CategoryCoercion, code, message).
		WithContext("column", column).
		WithContext("row", row).
		WithContext("value", value)
}

// EmptyResultWarning signals that a filter or partition step produced zero
// records. The export is skipped rather than producing a misleading empty
// artifact.
func EmptyResultWarning(operation string) *ReconcilerError {
	return New(CategoryProcessing, CodeEmptyResult,
		fmt.Sprintf("%s produced no records", operation)).
		WithSuggestion("review the selected periods, categories, and purge settings").
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the flag documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment, or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryConfig, code, message)
	} else {
		result = New(CategoryConfig, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// ProcessingError creates a reconciliation/processing error
func ProcessingError(operation string, err error) *ReconcilerError {
	result := Wrap(err, CategoryProcessing, CodeProcessingError,
		fmt.Sprintf("processing error during %s", operation))
	if result == nil {
		result = New(CategoryProcessing, CodeProcessingError,
			fmt.Sprintf("processing error during %s", operation))
	}
	return result.WithContext("operation", operation)
}

// ExportError creates an export-related error
func ExportError(code ErrorCode, target string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeSheetLimit:
		message = fmt.Sprintf("sheet name exceeds format limit: %s", target)
		suggestion = "shorten the section name; names are truncated to 31 characters"
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write export artifact: %s", target)
		suggestion = "check disk space and write permissions for the output directory"
	default:
		message = fmt.Sprintf("export error: %s", target)
		suggestion = "check the output path and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryExport, code, message)
	} else {
		result = New(CategoryExport, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("target", target)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *ReconcilerError {
	result := Wrap(err, CategoryInternal, CodeUnexpectedError,
		fmt.Sprintf("unexpected error during %s", operation))
	if result == nil {
		result = New(CategoryInternal, CodeUnexpectedError,
			fmt.Sprintf("unexpected error during %s", operation))
	}
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// Utility functions

// IsReconcilerError checks if an error is a ReconcilerError
func IsReconcilerError(err error) bool {
	_, ok := err.(*ReconcilerError)
	return ok
}

// AsReconcilerError extracts a ReconcilerError from an error chain
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	var reconcilerErr *ReconcilerError
	if errors.As(err, &reconcilerErr) {
		return reconcilerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ReconcilerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	if reconcilerErr, ok := AsReconcilerError(err); ok {
		return reconcilerErr
	}

	return Wrap(err, category, code, message)
}
