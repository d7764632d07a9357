package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code.
// Lets callers write errors.Is(err, errors.New(errors.CodeNoData, "")).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeDatabaseError     = "DATABASE_ERROR"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeMissingParameter  = "MISSING_PARAMETER"
	CodeNoData            = "NO_DATA"
	CodeNoValidData       = "NO_VALID_DATA"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeCanceled          = "REQUEST_CANCELED"
	CodeTimeout           = "TIMEOUT"
)

// StatusClientClosedRequest is reported when the caller went away first
const StatusClientClosedRequest = 499

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func UnsupportedFormat(format string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format))
}

// ColumnNotFound reports a header lookup failure. The message enumerates the
// available headers so the user can correct the selection.
func ColumnNotFound(column string, headers []string) *AppError {
	quoted := make([]string, len(headers))
	for i, h := range headers {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return New(CodeColumnNotFound, fmt.Sprintf(
		"column %q not found; available columns: [%s]", column, strings.Join(quoted, ", ")))
}

// MissingParameter reports required request fields that were absent.
func MissingParameter(names ...string) *AppError {
	return New(CodeMissingParameter, fmt.Sprintf("missing required parameter(s): %s", strings.Join(names, ", ")))
}

func NoData(message string) *AppError {
	return New(CodeNoData, message)
}

func NoValidData(column string) *AppError {
	return New(CodeNoValidData, fmt.Sprintf("no valid numeric data found in column %q", column))
}

// FromContext wraps a context error with CodeCanceled or CodeTimeout so an
// abandoned request is not reported as a server fault. Other errors are
// wrapped as usual.
func FromContext(err error, message string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: CodeTimeout, Message: message, Cause: err}
	case stderrors.Is(err, context.Canceled):
		return &AppError{Code: CodeCanceled, Message: message, Cause: err}
	default:
		return Wrap(err, message)
	}
}

// HTTPStatus maps an error to the status code the API layer responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeColumnNotFound, CodeMissingParameter, CodeNoData, CodeNoValidData,
		CodeInvalidInput, CodeValidationError, CodeUnsupportedFormat:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeCanceled:
		return StatusClientClosedRequest
	case CodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
