package errors

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers of the engine.
const (
	CodePermissionDenied     = "permission_denied"
	CodeDeviceUnavailable    = "device_unavailable"
	CodeDecodeFailure        = "decode_failure"
	CodeEncodeFailure        = "encode_failure"
	CodeSyncDrift            = "sync_drift"
	CodeDurationUnmeasurable = "duration_unmeasurable"
	CodeInvalidState         = "invalid_state"
	CodeInvalidInput         = "invalid_input"
	CodeNotFound             = "not_found"
	CodeBudgetExhausted      = "budget_exhausted"
	CodeAlreadyExists        = "already_exists"
)

var (
	ErrPermissionDenied     = &Error{Code: CodePermissionDenied, Message: "permission denied"}
	ErrDeviceUnavailable    = &Error{Code: CodeDeviceUnavailable, Message: "device unavailable"}
	ErrDecodeFailure        = &Error{Code: CodeDecodeFailure, Message: "decode failure"}
	ErrEncodeFailure        = &Error{Code: CodeEncodeFailure, Message: "encode failure"}
	ErrSyncDrift            = &Error{Code: CodeSyncDrift, Message: "sync drift"}
	ErrDurationUnmeasurable = &Error{Code: CodeDurationUnmeasurable, Message: "duration unmeasurable"}
	ErrInvalidState         = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrInvalidInput         = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrBudgetExhausted      = &Error{Code: CodeBudgetExhausted, Message: "duration budget exhausted"}
	ErrAlreadyExists        = &Error{Code: CodeAlreadyExists, Message: "already exists"}
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any error carrying the same code, so WrapWithCode results
// satisfy errors.Is against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code != "" && t.Code == e.Code
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetCode(err),
		Message: message,
		Err:     err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join is errors.Join re-exported so callers only import this package.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	for errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		err = e.Err
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsPermissionDenied returns true if camera or microphone access was refused
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsDeviceUnavailable returns true if the capture device is missing or busy
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// IsDecodeFailure returns true if a clip or audio source could not be decoded
func IsDecodeFailure(err error) bool {
	return errors.Is(err, ErrDecodeFailure)
}

// IsEncodeFailure returns true if a capture segment could not be produced
func IsEncodeFailure(err error) bool {
	return errors.Is(err, ErrEncodeFailure)
}

// IsInvalidState returns true if an operation was called in the wrong state
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
