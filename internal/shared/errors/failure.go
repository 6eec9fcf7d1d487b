package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidTransition marks a status change the order lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ClientErrorKind classifies failures detected before a request leaves the client.
type ClientErrorKind string

const (
	KindInvalidTransition ClientErrorKind = "invalid-transition"
	KindMalformedRequest  ClientErrorKind = "malformed-request"
	KindSelectionUnset    ClientErrorKind = "selection-unset"
)

// ValidationError is a locally detected input problem. No request was sent.
type ValidationError struct {
	Err error
}

// NewValidationError wraps a domain rule violation.
func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil || e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ClientError reports a request the client refused to build or send.
type ClientError struct {
	Kind    ClientErrorKind
	Message string
	Err     error
}

// NewClientError builds a ClientError of the given kind.
func NewClientError(kind ClientErrorKind, message string, err error) *ClientError {
	return &ClientError{Kind: kind, Message: message, Err: err}
}

func (e *ClientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Is lets invalid-transition refusals match ErrInvalidTransition even when no cause is attached.
func (e *ClientError) Is(target error) bool {
	return target == ErrInvalidTransition && e.Kind == KindInvalidTransition
}

// NetworkError means the request was sent but no response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: network error", e.Op)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the backend answered with an error status.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%d - %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%d - %s", e.StatusCode, e.Body)
}

// Retryable reports whether the caller should offer a retry affordance.
func Retryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Describe renders err as the single message shown to the user, prefixed by the action
// that failed (for example "Error fetching orders").
func Describe(action string, err error) string {
	if err == nil {
		return ""
	}
	action = strings.TrimSpace(action)
	var (
		netErr    *NetworkError
		serverErr *ServerError
		clientErr *ClientError
		valErr    *ValidationError
	)
	switch {
	case errors.As(err, &netErr):
		return action + ": Network Error. Please ensure the backend services are running. Click to retry."
	case errors.As(err, &serverErr):
		return fmt.Sprintf("%s: %s", action, serverErr.Error())
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &clientErr):
		return fmt.Sprintf("%s: %s", action, clientErr.Error())
	default:
		return fmt.Sprintf("%s: %s", action, err.Error())
	}
}
