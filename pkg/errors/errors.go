package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrInvalidIndex ErrorCode = "INVALID_INDEX"
	ErrNameConflict ErrorCode = "NAME_CONFLICT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Load order errors
	ErrPendingChanges ErrorCode = "PENDING_CHANGES"
	ErrNotConfigured  ErrorCode = "NOT_CONFIGURED"
	ErrOwnerInactive  ErrorCode = "OWNER_INACTIVE"

	// Manifest errors
	ErrStaleManifestEntry ErrorCode = "STALE_MANIFEST_ENTRY"
	ErrManifestParse      ErrorCode = "MANIFEST_PARSE"

	// Installer errors
	ErrInvalidInstallerConfig ErrorCode = "INVALID_INSTALLER_CONFIG"
	ErrIncompleteSelection    ErrorCode = "INCOMPLETE_SELECTION"
	ErrWizardAbandoned        ErrorCode = "WIZARD_ABANDONED"

	// FileSystem errors
	ErrFileAccess         ErrorCode = "FILE_ACCESS"
	ErrFileWrite          ErrorCode = "FILE_WRITE"
	ErrLinkFailure        ErrorCode = "LINK_FAILURE"
	ErrUnsupportedArchive ErrorCode = "UNSUPPORTED_ARCHIVE"
)

// ModlinkError represents a structured error with code and details
type ModlinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModlinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModlinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModlinkError) Is(target error) bool {
	var targetErr *ModlinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModlinkError with the given code and message
func New(code ErrorCode, message string) *ModlinkError {
	return &ModlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModlinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModlinkError {
	return &ModlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModlinkError
func Wrap(err error, code ErrorCode, message string) *ModlinkError {
	if err == nil {
		return nil
	}
	return &ModlinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModlinkError {
	if err == nil {
		return nil
	}
	return &ModlinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModlinkError) WithDetail(key string, value interface{}) *ModlinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var modlinkErr *ModlinkError
	if errors.As(err, &modlinkErr) {
		return modlinkErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ModlinkError
func GetErrorCode(err error) ErrorCode {
	var modlinkErr *ModlinkError
	if errors.As(err, &modlinkErr) {
		return modlinkErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ModlinkError
func GetErrorDetails(err error) map[string]interface{} {
	var modlinkErr *ModlinkError
	if errors.As(err, &modlinkErr) {
		return modlinkErr.Details
	}
	return nil
}

// Multi collects several errors that belong to one batch operation.
// A nil or empty Multi is not an error; use Err to get a plain error value.
type Multi []error

// Error joins every collected message, one per line.
func (m Multi) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m Multi) Unwrap() []error {
	return m
}

// Err returns nil for an empty batch and the batch itself otherwise.
func (m Multi) Err() error {
	if len(m) == 0 {
		return nil
	}
	return m
}
