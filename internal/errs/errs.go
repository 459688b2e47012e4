// Package errs defines the error taxonomy shared by the store, media and service layers.
//
// Callers classify failures with errors.Is against the sentinel kinds:
//
//	if errors.Is(err, errs.ErrNotFound) {
//		...
//	}
//
// or recover the full value with errors.As:
//
//	var e *errs.Error
//	if errors.As(err, &e) {
//		fmt.Println(e.Kind, e.Message)
//	}
package errs

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how the caller is expected to react to it.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindUploadFailed Kind = "upload_failed"
	KindInternal     Kind = "internal"
)

// Sentinel errors, one per kind. An *Error matches the sentinel of its kind.
var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "already exists"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUploadFailed = &Error{Kind: KindUploadFailed, Message: "upload failed"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
)

// Error carries a kind, a user-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message, followed by the cause when present.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Detail returns the cause's message, or "" when there is none.
func (e *Error) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }
func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }
func UploadFailed(msg string, err error) *Error { return newError(KindUploadFailed, msg, err) }
func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, msg string, err error) *Error { return newError(kind, msg, err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status used by the HTTP layer.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Describe returns the response status, the user-facing message and the
// optional detail for err.
func Describe(err error) (status int, message, detail string) {
	var e *Error
	if errors.As(err, &e) {
		return HTTPStatus(e.Kind), e.Message, e.Detail()
	}
	return http.StatusInternalServerError, "Internal server error", err.Error()
}
