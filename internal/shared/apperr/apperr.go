package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindUpstream
)

// Error is the error type crossing the service/handler boundary. Code is a
// stable machine readable identifier, Message is safe to show to clients and Err
// is the underlying cause, which is logged but never returned to the caller.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so that sentinel errors keep matching after Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: message}
}

func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstream, Code: "upstream_unavailable", Message: message, Err: cause}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: message, Err: cause}
}

// KindOf reports the kind of err; anything that is not an *Error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ToFiber converts err into the fiber error returned from a handler. Internal
// and upstream causes are logged; the client only sees the generic message.
func ToFiber(log logrus.FieldLogger, err error) *fiber.Error {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal("internal error", err)
	}
	if (e.Kind == KindInternal || e.Kind == KindUpstream) && log != nil {
		log.WithError(err).WithField("code", e.Code).Error(e.Message)
	}
	return fiber.NewError(Status(e.Kind), e.Message)
}

// CodeFor returns the code to put in a JSON error body for the given status.
func CodeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "validation_failed"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusBadGateway:
		return "upstream_unavailable"
	case fiber.StatusInternalServerError:
		return "internal"
	default:
		return "error"
	}
}
