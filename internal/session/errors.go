package session

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidEmail       = "auth/invalid-email"
	CodeUserNotFound       = "auth/user-not-found"
	CodeWrongPassword      = "auth/wrong-password"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodeNetworkFailed      = "auth/network-request-failed"
	CodeTooManyRequests    = "auth/too-many-requests"
	CodeUserDisabled       = "auth/user-disabled"
	CodeInternal           = "auth/internal-error"
	DefaultMessage         = "An error occurred. Please try again."
	msgPasswordsDoNotMatch = "Passwords do not match"
)

var messages = map[string]string{
	CodeInvalidEmail:      "Invalid email address.",
	CodeUserNotFound:      "No account found with this email.",
	CodeWrongPassword:     "Incorrect password.",
	CodeInvalidCredential: "Invalid email or password.",
	CodeEmailAlreadyInUse: "An account with this email already exists.",
	CodeWeakPassword:      "Password should be at least 6 characters.",
	CodeNetworkFailed:     "Network error. Please check your connection.",
	CodeTooManyRequests:   "Too many requests. Please try again later.",
	CodeUserDisabled:      "This account has been disabled.",
}

// ProviderError is a provider failure tagged with a provider error code.
type ProviderError struct {
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *ProviderError) Unwrap() error { return e.Err }

func Errorf(code, format string, args ...any) error {
	return &ProviderError{Code: code, Err: fmt.Errorf(format, args...)}
}

// ValidationError is a form problem caught before the provider is called.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Code returns the provider code carried by err, or "".
func Code(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Message is the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if m, ok := messages[Code(err)]; ok {
		return m
	}
	return DefaultMessage
}
