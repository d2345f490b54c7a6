// Package errors provides the structured error type used by ciclowiki's
// infrastructure: configuration, content loading, and the HTTP server.
//
// Navigation itself never fails; unknown pages fall back to the home view.
// Everything around it (reading content, binding a port, parsing config)
// reports failures as *WikiError values so the CLI can print a category and
// a stable code next to the message.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeContent    ErrorType = "content"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeInternal   ErrorType = "internal"
)

// WikiError is a structured error type with context.
type WikiError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Page        string
	Recoverable bool
}

// Error implements the error interface.
func (e *WikiError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Page != "" {
		parts = append(parts, "page:"+e.Page)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *WikiError) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same type and code.
func (e *WikiError) Is(target error) bool {
	var t *WikiError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *WikiError) WithContext(key string, value interface{}) *WikiError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPage records the page key involved.
func (e *WikiError) WithPage(page string) *WikiError {
	e.Page = page

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *WikiError {
	return &WikiError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewContentError creates an error for unreadable or malformed content.
func NewContentError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeContent,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Wrap wraps err as an internal error unless it already is a *WikiError.
func Wrap(err error, code, message string) error {
	if err == nil {
		return nil
	}

	var we *WikiError
	if errors.As(err, &we) {
		return err
	}

	return NewInternalError(code, message, err)
}

// IsRecoverable reports whether err can be retried or ignored.
func IsRecoverable(err error) bool {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Recoverable
	}

	return false
}

// TypeOf returns the category of err, or ErrorTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Type
	}

	return ErrorTypeInternal
}

// Common error codes.
const (
	ErrCodeInvalidPort    = "ERR_INVALID_PORT"
	ErrCodeInvalidHost    = "ERR_INVALID_HOST"
	ErrCodeInvalidPath    = "ERR_INVALID_PATH"
	ErrCodeInvalidDelay   = "ERR_INVALID_DELAY"
	ErrCodeInvalidPage    = "ERR_INVALID_PAGE"
	ErrCodeInvalidBreakpt = "ERR_INVALID_BREAKPOINT"
	ErrCodeConfigLoad     = "ERR_CONFIG_LOAD"
	ErrCodeContentLoad    = "ERR_CONTENT_LOAD"
	ErrCodeDanglingLink   = "ERR_DANGLING_LINK"
	ErrCodeServerStart    = "ERR_SERVER_START"
	ErrCodeWatcherStart   = "ERR_WATCHER_START"
	ErrCodeRender         = "ERR_RENDER"
	ErrCodeExport         = "ERR_EXPORT"
)
