// Package errors classifies portal failures and renders them as RFC 7807 Problem Details.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ProblemDetail is the RFC 7807 body the portal API answers failures with.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy carrying the message the screen shows.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with one more extension member.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem types, one per failure class the portal distinguishes.
const (
	TypeValidation        = "/problems/validation-error"
	TypeInvalidTransition = "/problems/invalid-transition"
	TypeSelectionUnset    = "/problems/selection-unset"
	TypeBadRequest        = "/problems/bad-request"
	TypeNotInView         = "/problems/not-in-view"
	TypeBadGateway        = "/problems/backend-unreachable"
	TypeUpstream          = "/problems/backend-error"
	TypeInternal          = "/problems/internal-error"
)

var (
	ProblemValidation        = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}
	ProblemInvalidTransition = ProblemDetail{Type: TypeInvalidTransition, Title: "Status Change Not Allowed", Status: http.StatusConflict}
	ProblemSelectionUnset    = ProblemDetail{Type: TypeSelectionUnset, Title: "Nothing Selected", Status: http.StatusConflict}
	ProblemBadRequest        = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}
	ProblemNotInView         = ProblemDetail{Type: TypeNotInView, Title: "Not In Current View", Status: http.StatusNotFound}
	ProblemBadGateway        = ProblemDetail{Type: TypeBadGateway, Title: "Backend Unreachable", Status: http.StatusBadGateway}
	ProblemUpstream          = ProblemDetail{Type: TypeUpstream, Title: "Backend Error", Status: http.StatusBadGateway}
	ProblemInternal          = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
)

// ProblemFor maps a classified failure to the problem returned by the portal API. The detail
// is the same sentence Describe renders; the retryable extension drives the retry affordance.
func ProblemFor(action string, err error) ProblemDetail {
	var (
		netErr    *NetworkError
		serverErr *ServerError
		clientErr *ClientError
		valErr    *ValidationError
		problem   ProblemDetail
	)
	switch {
	case errors.As(err, &netErr):
		problem = ProblemBadGateway
	case errors.As(err, &serverErr):
		problem = ProblemUpstream.WithExtension("upstreamStatus", serverErr.StatusCode)
	case errors.As(err, &valErr):
		problem = ProblemValidation
	case errors.As(err, &clientErr):
		switch clientErr.Kind {
		case KindInvalidTransition:
			problem = ProblemInvalidTransition
		case KindSelectionUnset:
			problem = ProblemSelectionUnset
		default:
			problem = ProblemBadRequest
		}
		problem = problem.WithExtension("kind", string(clientErr.Kind))
	default:
		problem = ProblemInternal
	}
	return problem.
		WithDetail(Describe(action, err)).
		WithExtension("retryable", Retryable(err))
}
