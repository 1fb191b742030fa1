package service

import (
	"errors"
	"fmt"

	"github.com/maxviazov/tennis-players-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is what every use case returns on a classified failure. Message is safe to
// show to clients; Err keeps the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the sentinel of the kind so errors.Is keeps working across layers.
func (e *Error) Unwrap() []error {
	var out []error
	switch e.Kind {
	case KindValidation:
		out = append(out, ErrInvalidInput)
	case KindNotFound:
		out = append(out, repository.ErrNotFound)
	case KindConflict:
		out = append(out, repository.ErrAlreadyExists)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf classifies any error. Unclassified repository sentinels are mapped too,
// so a bare ErrNotFound from a store still becomes KindNotFound.
func KindOf(err error) Kind {
	var se *Error
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &se):
		return se.Kind
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrAlreadyExists):
		return KindConflict
	default:
		return KindInternal
	}
}

// FieldErrors extracts field errors from a validation error.
func FieldErrors(err error) []FieldError {
	var se *Error
	if errors.As(err, &se) && se.Kind == KindValidation {
		return se.Fields
	}
	return nil
}

// newInvalidInput builds an aggregated validation error if any field errors are present.
// The message is the first field's message, which is what clients of the listing
// and update endpoints expect to see.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &Error{Kind: KindValidation, Message: fe[0].Message, Fields: fe}
}

// NewInvalidInputError lets the transport layer report binding failures the same
// way the service reports validation failures.
func NewInvalidInputError(fe []FieldError) error {
	return newInvalidInput(fe)
}

func invalid(field, msg string) error {
	return newInvalidInput([]FieldError{{Field: field, Message: msg}})
}

func notFound(id int64) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("Player with id %d not found", id)}
}

func notFoundMsg(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func conflict(msg string, cause error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}
