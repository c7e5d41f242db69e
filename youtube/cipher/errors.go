package cipher

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ytget/ytcipher/errs"
)

// Error codes
const (
	ErrCodeScriptDownload   = "SCRIPT_DOWNLOAD_FAILED"
	ErrCodeScriptStatus     = "SCRIPT_BAD_STATUS"
	ErrCodeActionsNotFound  = "ACTIONS_NOT_FOUND"
	ErrCodeFunctionNotFound = "DECIPHER_FUNCTION_NOT_FOUND"
	ErrCodeInvalidURL       = "INVALID_URL"
	ErrCodeVerifyFailed     = "VERIFY_FAILED"
)

// Error represents a structured error with code and details
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is maps error codes onto the sentinels in package errs.
func (e *Error) Is(target error) bool {
	switch target {
	case errs.ErrNetwork:
		return isNetworkCode(e.Code)
	case errs.ErrFormat:
		return isFormatCode(e.Code)
	case errs.ErrInvalidURL:
		return e.Code == ErrCodeInvalidURL
	}
	return false
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// NewError creates a new Error with the given code and message
func NewError(code string, message string, details ...any) *Error {
	e := &Error{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Wrap creates a new Error carrying cause.
func Wrap(code string, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func isNetworkCode(code string) bool {
	return code == ErrCodeScriptDownload || code == ErrCodeScriptStatus
}

func isFormatCode(code string) bool {
	return code == ErrCodeActionsNotFound || code == ErrCodeFunctionNotFound
}

// IsNetwork returns true if the script could not be fetched
func IsNetwork(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return isNetworkCode(e.Code)
	}
	return false
}

// IsFormat returns true if the script was fetched but not recognized
func IsFormat(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return isFormatCode(e.Code)
	}
	return false
}

// Code returns the error code carried by err, or "" if it is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
