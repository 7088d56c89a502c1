package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	BadRequest
	BadGateway
	// ResourceMissing marks a store whose bucket or table does not exist yet.
	ResourceMissing
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	case BadGateway:
		return "bad_gateway"
	case ResourceMissing:
		return "resource_missing"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func NewNotFound(msg string) *Error {
	return New(NotFound, msg, nil)
}

func NewBadRequest(msg string, cause error) *Error {
	return New(BadRequest, msg, cause)
}

func NewBadGateway(msg string, cause error) *Error {
	return New(BadGateway, msg, cause)
}

func NewInternal(msg string, cause error) *Error {
	return New(Internal, msg, cause)
}

func NewResourceMissing(resource string, cause error) *Error {
	return New(ResourceMissing, resource+" does not exist", cause)
}

// KindOf returns the kind of the first *Error in the chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsResourceMissing(err error) bool {
	return err != nil && KindOf(err) == ResourceMissing
}

// Message returns the client-facing message of the first *Error in the chain.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case BadRequest:
		return http.StatusBadRequest
	case BadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
