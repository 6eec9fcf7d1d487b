package domain

import (
	"errors"
	"strings"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPriority  Status = "PRIORITY"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("order status is invalid")

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusPending, StatusPriority, StatusFulfilled, StatusCancelled}

// transitions holds the changes a client may request. Fulfilled is reached only by the
// order service, so it never appears as a target here.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPriority, StatusCancelled},
	StatusPriority:  {StatusCancelled},
	StatusFulfilled: {},
	StatusCancelled: {},
}

// ParseStatus accepts the service's upper-case form as well as the display form ("Pending").
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// Label is the display form, e.g. "Pending".
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// CanTransition reports whether a client may request from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the targets a client may request from s.
func AllowedTransitions(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
