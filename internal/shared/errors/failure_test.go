package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryable_OnlyNetworkErrors(t *testing.T) {
	netErr := &NetworkError{Op: "GET /api/orders", Err: errors.New("connection refused")}

	assert.True(t, Retryable(netErr))
	assert.True(t, Retryable(fmt.Errorf("reload: %w", netErr)))
	assert.False(t, Retryable(&ServerError{StatusCode: http.StatusInternalServerError, Body: "boom"}))
	assert.False(t, Retryable(NewClientError(KindMalformedRequest, "bad", nil)))
	assert.False(t, Retryable(NewValidationError(errors.New("bad date"))))
	assert.False(t, Retryable(nil))
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network",
			err:  &NetworkError{Op: "GET /api/orders", Err: errors.New("timeout")},
			want: "Error fetching orders: Network Error. Please ensure the backend services are running. Click to retry.",
		},
		{
			name: "server",
			err:  &ServerError{StatusCode: http.StatusNotFound, Body: "no such region"},
			want: "Error fetching orders: 404 - no such region",
		},
		{
			name: "server without body",
			err:  &ServerError{StatusCode: http.StatusServiceUnavailable},
			want: "Error fetching orders: 503 - Service Unavailable",
		},
		{
			name: "validation is shown verbatim",
			err:  NewValidationError(errors.New("Expected Delivery Time cannot be in the past")),
			want: "Expected Delivery Time cannot be in the past",
		},
		{
			name: "client",
			err:  NewClientError(KindSelectionUnset, "region is not selected", nil),
			want: "Error fetching orders: region is not selected",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Describe("Error fetching orders", tc.err))
		})
	}
}

func TestClientError_InvalidTransitionMatchesSentinel(t *testing.T) {
	err := NewClientError(KindInvalidTransition, "order 7 is Cancelled", nil)
	require.ErrorIs(t, err, ErrInvalidTransition)

	other := NewClientError(KindMalformedRequest, "missing id", nil)
	require.NotErrorIs(t, other, ErrInvalidTransition)
}

func TestProblemFor(t *testing.T) {
	problem := ProblemFor("Error fetching orders", &NetworkError{Op: "GET", Err: errors.New("refused")})
	assert.Equal(t, http.StatusBadGateway, problem.Status)
	assert.Equal(t, true, problem.Extensions["retryable"])

	problem = ProblemFor("Error updating order", NewClientError(KindInvalidTransition, "refused", nil))
	assert.Equal(t, http.StatusConflict, problem.Status)
	assert.Equal(t, string(KindInvalidTransition), problem.Extensions["kind"])
	assert.Equal(t, false, problem.Extensions["retryable"])

	problem = ProblemFor("Error creating order", &ServerError{StatusCode: http.StatusBadRequest, Body: "Region cannot be empty"})
	assert.Equal(t, TypeUpstream, problem.Type)
	assert.Equal(t, http.StatusBadRequest, problem.Extensions["upstreamStatus"])
	assert.Equal(t, "Error creating order: 400 - Region cannot be empty", problem.Detail)
}
