package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Catalog errors
	ErrUnknownDataset ErrorCode = "UNKNOWN_DATASET"
	ErrCatalogInvalid ErrorCode = "CATALOG_INVALID"

	// Redirect errors
	ErrPathResolve        ErrorCode = "PATH_RESOLVE"
	ErrContainment        ErrorCode = "CONTAINMENT"
	ErrDestCollision      ErrorCode = "DEST_COLLISION"
	ErrInvalidDest        ErrorCode = "INVALID_DEST"
	ErrSymlinkUnsupported ErrorCode = "SYMLINK_UNSUPPORTED"
	ErrTreeBuild          ErrorCode = "TREE_BUILD"

	// Scope errors
	ErrScopeClosed ErrorCode = "SCOPE_CLOSED"

	// FileSystem errors
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileCreate    ErrorCode = "FILE_CREATE"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// DatarootError represents a structured error with code and details
type DatarootError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DatarootError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DatarootError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DatarootError) Is(target error) bool {
	var targetErr *DatarootError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DatarootError with the given code and message
func New(code ErrorCode, message string) *DatarootError {
	return &DatarootError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DatarootError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DatarootError {
	return &DatarootError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DatarootError
func Wrap(err error, code ErrorCode, message string) *DatarootError {
	if err == nil {
		return nil
	}
	return &DatarootError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DatarootError {
	if err == nil {
		return nil
	}
	return &DatarootError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DatarootError) WithDetail(key string, value interface{}) *DatarootError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DatarootError) WithDetails(details map[string]interface{}) *DatarootError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var drErr *DatarootError
	if errors.As(err, &drErr) {
		return drErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DatarootError
func GetErrorCode(err error) ErrorCode {
	var drErr *DatarootError
	if errors.As(err, &drErr) {
		return drErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DatarootError
func GetErrorDetails(err error) map[string]interface{} {
	var drErr *DatarootError
	if errors.As(err, &drErr) {
		return drErr.Details
	}
	return nil
}
