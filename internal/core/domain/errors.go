package domain

import "errors"

// ErrorKind tags an Error with its category. Every boundary (HTTP error
// handler, middleware) switches exhaustively on the kind instead of matching
// message strings.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindDuplicate          ErrorKind = "duplicate"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindForbidden          ErrorKind = "forbidden"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
)

// Error is the tagged error variant used across the core. Message is safe to
// return to clients; cause carries internal detail for logs only and is never
// serialized.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Is matches two domain errors by kind, so errors.Is(err, ErrInvalidCredentials)
// holds for any error of that kind regardless of how it was constructed.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Shared values for the kinds whose message must be uniform. Login failures in
// particular must be indistinguishable between unknown user, wrong password,
// and deactivated account.
var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "access forbidden"}
)

// NewValidationError reports malformed or missing client input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewDuplicateError reports a uniqueness conflict on username or email.
func NewDuplicateError(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

// NewNotFoundError reports an absent identity at the storage layer.
func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NewInternalError wraps an unexpected failure. The cause stays internal; the
// client only ever sees the generic message.
func NewInternalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", cause: cause}
}

// KindOf extracts the kind from any error chain, defaulting to KindInternal
// for errors the core did not classify.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
