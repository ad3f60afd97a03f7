package service

import (
	"errors"
)

// Failure kinds. Match with errors.Is.
var (
	ErrConflict          = errors.New("conflict")
	ErrBadRequest        = errors.New("bad_request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not_found")
	ErrUnsupportedFormat = errors.New("unsupported_format")
	ErrDispatchFailure   = errors.New("dispatch_failure")
)

// User-facing messages.
const (
	MsgEmailInUse          = "Email already in use"
	MsgNotFound            = "Not found"
	MsgMissingEmail        = "Missing required field email"
	MsgAlreadyVerified     = "Verification has already been passed"
	MsgInvalidCredentials  = "Email or password invalid"
	MsgNotVerified         = "Your account is not verified"
	MsgNotAuthorized       = "Not authorized"
	MsgUnsupportedImage    = "Unsupported image format"
	MsgMissingAvatar       = "Missing required file avatar"
	MsgInvalidSubscription = "Invalid subscription"
	MsgMailNotSent         = "Verification email could not be sent"
)

// Error is a typed failure. Message is safe to show to clients; Err keeps the
// underlying cause for logs.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func fail(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func failWith(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// AsError extracts the typed failure from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
