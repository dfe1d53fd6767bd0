package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the console client and the dev backend.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeConflict              = "CONFLICT"
	CodeInternal              = "INTERNAL_ERROR"
	CodeCredentialsRejected   = "CREDENTIALS_REJECTED"
	CodeInsufficientPrivilege = "INSUFFICIENT_PRIVILEGE"
	CodeSessionInvalidated    = "SESSION_INVALIDATED"
	CodeMalformedToken        = "MALFORMED_TOKEN"
	CodeBackendUnreachable    = "BACKEND_UNREACHABLE"
	CodeBackendError          = "BACKEND_ERROR"
)

// Messages shown on the login form when the backend gives nothing better.
const (
	MessageLoginFailed           = "Login failed. Please try again."
	MessageInsufficientPrivilege = "Users without the admin role cannot access the admin console."
)

// Sentinels for errors.Is; matching is by Code.
var (
	ErrCredentialsRejected   = &DomainError{Code: CodeCredentialsRejected}
	ErrInsufficientPrivilege = &DomainError{Code: CodeInsufficientPrivilege}
	ErrSessionInvalidated    = &DomainError{Code: CodeSessionInvalidated}
	ErrMalformedToken        = &DomainError{Code: CodeMalformedToken}
	ErrBackendUnreachable    = &DomainError{Code: CodeBackendUnreachable}
	ErrNotFound              = &DomainError{Code: CodeNotFound}
	ErrConflict              = &DomainError{Code: CodeConflict}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewCredentialsRejected is returned when the backend declines login credentials.
func NewCredentialsRejected(message string, status int) error {
	if message == "" {
		message = MessageLoginFailed
	}
	return NewDomainError(CodeCredentialsRejected, message, status, nil)
}

// NewInsufficientPrivilege is returned when an issued token lacks the admin role.
func NewInsufficientPrivilege() error {
	return NewDomainError(CodeInsufficientPrivilege, MessageInsufficientPrivilege, http.StatusForbidden, nil)
}

// NewSessionInvalidated marks a token the backend stopped accepting.
func NewSessionInvalidated(status int) error {
	return NewDomainError(CodeSessionInvalidated, "session invalidated", status, nil)
}

// NewMalformedToken wraps a token decode failure.
func NewMalformedToken(err error) error {
	return &DomainError{Code: CodeMalformedToken, Message: "malformed session token", Err: err}
}

// NewBackendUnreachable wraps a transport failure talking to the backend.
func NewBackendUnreachable(err error) error {
	return &DomainError{Code: CodeBackendUnreachable, Message: "backend unreachable", Err: err}
}

// FromStatus converts a non-2xx backend response into a DomainError.
func FromStatus(status int, message string) error {
	code := CodeBackendError
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = CodeValidationFailed
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusConflict:
		code = CodeConflict
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return NewDomainError(code, message, status, nil)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus
	}
	return 0
}

// IsSessionError reports whether err means the stored session is gone: an
// invalidated or malformed token, or any backend 401/403 outside login.
// These are recovered by the session gate and never shown to the user.
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSessionInvalidated) || errors.Is(err, ErrMalformedToken) {
		return true
	}
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	if domainErr.Code == CodeCredentialsRejected || domainErr.Code == CodeInsufficientPrivilege {
		return false
	}
	return domainErr.HTTPStatus == http.StatusUnauthorized || domainErr.HTTPStatus == http.StatusForbidden
}

// UserMessage returns the inline text a form should show for err. The second
// result is false when the error must stay silent.
func UserMessage(err error) (string, bool) {
	if err == nil || IsSessionError(err) {
		return "", false
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case CodeBackendUnreachable, CodeInternal:
			return MessageLoginFailed, true
		}
		if domainErr.Message != "" {
			return domainErr.Message, true
		}
	}
	return MessageLoginFailed, true
}

// MessageFromPayload extracts a human readable message from a backend error
// body: a top-level "message", the envelope's "error.message", or a bare
// "error" string. It returns "" when none is present.
func MessageFromPayload(payload []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	var msg string
	if raw, ok := body["message"]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
		return msg
	}
	raw, ok := body["error"]
	if !ok {
		return ""
	}
	if json.Unmarshal(raw, &msg) == nil {
		return msg
	}
	var envelope struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		return envelope.Message
	}
	return ""
}
