// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of where it originated.
type Kind int

// Error kinds, each mapped to one HTTP status by Status.
const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthorized
	KindInvalidCredentials
	KindTokenInvalid
	KindTokenExpiredOrReused
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTokenInvalid:
		return "token_invalid"
	case KindTokenExpiredOrReused:
		return "token_expired_or_reused"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized, KindInvalidCredentials, KindTokenInvalid, KindTokenExpiredOrReused:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a message safe to show to clients and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound)
// holds for every not-found error regardless of its message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

var (
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized, Message: "Unauthorized request"}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials, Message: "Invalid user credentials"}
	ErrTokenInvalid         = &Error{Kind: KindTokenInvalid, Message: "Invalid access token"}
	ErrTokenExpiredOrReused = &Error{Kind: KindTokenExpiredOrReused, Message: "Refresh Token is expired or used"}
	ErrForbidden            = &Error{Kind: KindForbidden, Message: "You are not allowed to modify this resource"}
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrConflict             = &Error{Kind: KindConflict, Message: "resource already exists"}
	ErrRateLimited          = &Error{Kind: KindRateLimited, Message: "Too many requests, please try again later"}
	ErrInternal             = &Error{Kind: KindInternal, Message: "Something went wrong"}
)

// New builds an error of the given kind with a client-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidArgument(message string) *Error { return New(KindInvalidArgument, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }

// KindOf reports the kind of err, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage returns the message that may be shown to a client. Internal
// errors never expose their cause.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return ErrInternal.Message
	}
	if appErr.Message != "" {
		return appErr.Message
	}
	return appErr.Kind.String()
}
