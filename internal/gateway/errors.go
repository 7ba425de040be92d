package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures.
type Kind string

const (
	KindUnreachable     Kind = "unreachable"
	KindBackendRejected Kind = "backend_rejected"
	KindMalformed       Kind = "malformed"
	KindEmptyInput      Kind = "empty_input"
	KindInvalidURL      Kind = "invalid_url"
	KindEmptyResult     Kind = "empty_result"
)

// Error is a normalized failure of one gateway call.
type Error struct {
	Op      string `json:"op"`
	Kind    Kind   `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Body    string `json:"body,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error formats gateway failures for logs.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status=%d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying transport or decode error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Kind == kind
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
