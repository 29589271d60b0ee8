package downloads

import (
	"errors"
	"fmt"
)

// Error kinds for categorizing orchestration failures. Kinds are stable
// strings that cross the API boundary as error_kind.
const (
	KindInvalidInput    = "invalid_input"
	KindInvalidCategory = "invalid_category"
	KindNotConnected    = "not_connected"
	KindAuthError       = "auth_error"
	KindRemoteError     = "remote_error"
	KindDirectoryError  = "directory_error"
)

// Error represents a categorized orchestration error.
type Error struct {
	Kind    string // stable error_kind string
	Message string // human-readable message, free of credentials
	Cause   error  // underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error matching for errors.Is().
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewInvalidInput creates a validation error. Detected before any remote
// I/O is attempted.
func NewInvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NewInvalidCategory creates an allow-list rejection error.
func NewInvalidCategory(cause error) *Error {
	return &Error{Kind: KindInvalidCategory, Message: cause.Error(), Cause: cause}
}

// NewNotConnected creates a missing-session error.
func NewNotConnected() *Error {
	return &Error{Kind: KindNotConnected, Message: "not connected to MyJDownloader"}
}

// NewAuthError creates a remote credential/device rejection error.
func NewAuthError(cause error) *Error {
	return &Error{Kind: KindAuthError, Message: "remote service rejected credentials or device", Cause: cause}
}

// NewRemoteError creates an error for an opaque remote failure.
func NewRemoteError(operation string, cause error) *Error {
	return &Error{
		Kind:    KindRemoteError,
		Message: fmt.Sprintf("%s failed: %v", operation, cause),
		Cause:   cause,
	}
}

// NewDirectoryError creates a local filesystem error.
func NewDirectoryError(cause error) *Error {
	return &Error{Kind: KindDirectoryError, Message: cause.Error(), Cause: cause}
}

// KindOf extracts the error kind from an error, or empty when the error is
// not a categorized one.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
