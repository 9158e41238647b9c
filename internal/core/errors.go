package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

// Error kinds
const (
	KindAuth         ErrorKind = "auth"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnknownTool  ErrorKind = "unknown_tool"
	KindBadArguments ErrorKind = "bad_arguments"
	KindUpstream     ErrorKind = "upstream"
	KindNotFound     ErrorKind = "not_found"
)

// AppError is the error type shared by every pipeline stage.
type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same kind, so the kind sentinels below work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrAuth         = &AppError{Kind: KindAuth}
	ErrBadRequest   = &AppError{Kind: KindBadRequest}
	ErrUnknownTool  = &AppError{Kind: KindUnknownTool}
	ErrBadArguments = &AppError{Kind: KindBadArguments}
	ErrUpstream     = &AppError{Kind: KindUpstream}
	ErrNotFound     = &AppError{Kind: KindNotFound}
)

// ErrMissingKey is the cause of an AuthError when no public key matches the key identifier.
var ErrMissingKey = errors.New("no public key found matching key identifier")

// NewAppErrorf creates an AppError with a formatted message
func NewAppErrorf(kind ErrorKind, cause error, format string, args ...any) *AppError {
	return &AppError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string, cause error) *AppError {
	return &AppError{Kind: KindAuth, Message: message, Cause: cause}
}

// NewBadRequest creates a malformed request error
func NewBadRequest(message string, cause error) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message, Cause: cause}
}

// NewUnknownTool reports a function name the registry cannot resolve
func NewUnknownTool(name string) *AppError {
	return NewAppErrorf(KindUnknownTool, nil, "unknown tool %q", name)
}

// NewBadArguments reports tool arguments that are not valid for the tool
func NewBadArguments(tool string, cause error) *AppError {
	return NewAppErrorf(KindBadArguments, cause, "invalid arguments for tool %q", tool)
}

// NewUpstreamError reports a failed call to an external collaborator
func NewUpstreamError(target string, cause error) *AppError {
	return NewAppErrorf(KindUpstream, cause, "upstream call to %s failed", target)
}

// NewNotFound reports a missing catalog entry
func NewNotFound(what, name string) *AppError {
	return NewAppErrorf(KindNotFound, nil, "%s %q not found", what, name)
}

// KindOf returns the kind of err, or "" when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status code returned to the caller.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
