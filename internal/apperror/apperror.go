package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuthentication Kind = "AuthenticationRequired"
	KindValidation     Kind = "ValidationFailure"
	KindForbidden      Kind = "Forbidden"
	KindNotFound       Kind = "NotFound"
	KindConflict       Kind = "Conflict"
	KindUpstream       Kind = "UpstreamServiceFailure"
	KindPersistence    Kind = "PersistenceFailure"
	KindInternal       Kind = "InternalError"
)

// Error is a classified failure. Code narrows the kind, e.g. a validation
// failure with code InvalidEmailFormat.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && t.Err == nil
}

func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Unauthenticated() *Error {
	return New(KindAuthentication, "", "authentication required", nil)
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message, nil)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, "", message, nil)
}

func NotFound(message string, err error) *Error {
	return New(KindNotFound, "", message, err)
}

func Conflict(message string) *Error {
	return New(KindConflict, "", message, nil)
}

func Upstream(message string) *Error {
	return New(KindUpstream, "", message, nil)
}

func Persistence(message string, err error) *Error {
	return New(KindPersistence, "", message, err)
}

func Internal(message string, err error) *Error {
	return New(KindInternal, "", message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, falling back to its kind.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		return string(e.Kind)
	}
	return string(KindInternal)
}

func StatusOf(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
