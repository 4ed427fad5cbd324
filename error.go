package phttp

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies an error into the taxonomy shared by the pipeline, the
// router and the cross-boundary adapter. It can be used to create errors to
// pass around across middleware layers and handle them structurally.
type Kind int

const (
	KindUnknown Kind = iota

	// Transport and routing.
	KindRouteNotFound
	KindMethodNotAllowed

	// Authentication.
	KindAuthenticationFailed
	KindInvalidToken
	KindTokenExpired

	// Validation.
	KindInvalidInput
	KindValidationError

	// Cross-boundary invocation.
	KindNullPointer
	KindInvalidParameter
	KindMarshalFailed
	KindHandlerNotFound

	// Internal.
	KindInternal
	KindTimeout
	KindOutOfMemory
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRouteNotFound:
		return "RouteNotFound"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	case KindAuthenticationFailed:
		return "AuthenticationFailed"
	case KindInvalidToken:
		return "InvalidToken"
	case KindTokenExpired:
		return "TokenExpired"
	case KindInvalidInput:
		return "InvalidInput"
	case KindValidationError:
		return "ValidationError"
	case KindNullPointer:
		return "NullPointer"
	case KindInvalidParameter:
		return "InvalidParameter"
	case KindMarshalFailed:
		return "MarshalFailed"
	case KindHandlerNotFound:
		return "HandlerNotFound"
	case KindInternal:
		return "InternalError"
	case KindTimeout:
		return "Timeout"
	case KindOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps the kind to the status the transport bridge responds with
// when an error of this kind reaches the top of the chain. Everything a
// middleware could not turn into a response locally is a 500-class condition
// except the two routing kinds.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindRouteNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error describes a pipeline error with its taxonomy kind.
type Error struct {
	kind Kind
	err  error
}

// NewError inits a new error given the taxonomy kind.
func NewError(k Kind, underlying error) *Error {
	return &Error{k, underlying}
}

// Errorf is shorthand for NewError with a formatted message.
func Errorf(k Kind, format string, args ...any) *Error {
	return &Error{k, errors.Newf(format, args...)}
}

func (e *Error) Kind() Kind    { return e.kind }
func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.err.Error())
}

// KindOf returns the error's taxonomy kind if it is or wraps an [*Error] and
// [KindUnknown] otherwise.
func KindOf(err error) Kind {
	if perr, ok := asError(err); ok {
		return perr.Kind()
	}
	return KindUnknown
}

// asError uses errors.As to unwrap any error and look for a phttp *Error.
func asError(err error) (*Error, bool) {
	var perr *Error
	ok := errors.As(err, &perr)
	return perr, ok
}
