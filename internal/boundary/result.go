package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed invocation on the wire.
type ErrorKind string

const (
	KindNotFound  ErrorKind = "NotFound"
	KindReadError ErrorKind = "ReadError"
)

// ErrMalformedEnvelope reports a decoded Result that is neither a clean
// success nor a clean failure.
var ErrMalformedEnvelope = errors.New("malformed result envelope")

// Result is the two-armed envelope returned across the process boundary.
// Build values with Success or Failure; exactly one arm is populated.
type Result[T any] struct {
	OK      bool      `json:"ok"`
	Object  *T        `json:"object,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Success wraps a payload.
func Success[T any](v T) Result[T] {
	return Result[T]{OK: true, Object: &v}
}

// Failure wraps an error kind and a human-readable message.
func Failure[T any](kind ErrorKind, message string) Result[T] {
	return Result[T]{Kind: kind, Message: message}
}

// Value returns the payload and true on success.
func (r Result[T]) Value() (T, bool) {
	if !r.OK || r.Object == nil {
		var zero T
		return zero, false
	}
	return *r.Object, true
}

// Err converts a failure into an *InvocationError; it returns nil on success.
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	return &InvocationError{Kind: r.Kind, Message: r.Message}
}

// UnmarshalJSON decodes an envelope and rejects mixed or empty arms.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var w resultWire[T]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.OK && w.Object == nil:
		return fmt.Errorf("%w: success without object", ErrMalformedEnvelope)
	case w.OK && (w.Kind != "" || w.Message != ""):
		return fmt.Errorf("%w: success carries error fields", ErrMalformedEnvelope)
	case !w.OK && w.Object != nil:
		return fmt.Errorf("%w: failure carries an object", ErrMalformedEnvelope)
	case !w.OK && w.Kind == "":
		return fmt.Errorf("%w: failure without kind", ErrMalformedEnvelope)
	}
	*r = Result[T](w)
	return nil
}

// resultWire has Result's fields without its methods.
type resultWire[T any] Result[T]

// InvocationError is the Go-side view of a Failure.
type InvocationError struct {
	Kind    ErrorKind
	Message string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
