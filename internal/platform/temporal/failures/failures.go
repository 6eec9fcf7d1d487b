// Package failures carries the client failure taxonomy across Temporal boundaries.
// Activities encode a classified error as a non-retryable ApplicationError and starters
// decode it back, so a durable submission reports the same class as a direct call.
package failures

import (
	"errors"
	"net/http"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/temporal"

	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

// Application error types.
const (
	TypeNetwork    = "NetworkError"
	TypeServer     = "ServerError"
	TypeClient     = "ClientError"
	TypeValidation = "ValidationError"
)

// Detail is the payload attached to an encoded failure.
type Detail struct {
	Op         string `json:"op,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Body       string `json:"body,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Encode converts err into a non-retryable ApplicationError. Unclassified errors keep
// their message and are still marked non-retryable; retries are always user driven.
func Encode(err error) error {
	if err == nil {
		return nil
	}
	var (
		netErr    *apierrors.NetworkError
		serverErr *apierrors.ServerError
		clientErr *apierrors.ClientError
		valErr    *apierrors.ValidationError
	)
	switch {
	case errors.As(err, &netErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), TypeNetwork, nil, Detail{Op: netErr.Op, Message: err.Error()})
	case errors.As(err, &serverErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), TypeServer, nil, Detail{StatusCode: serverErr.StatusCode, Body: serverErr.Body})
	case errors.As(err, &valErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), TypeValidation, nil, Detail{Message: valErr.Error()})
	case errors.As(err, &clientErr):
		return temporal.NewNonRetryableApplicationError(err.Error(), TypeClient, nil, Detail{Kind: string(clientErr.Kind), Message: clientErr.Error()})
	default:
		return temporal.NewNonRetryableApplicationError(err.Error(), "", nil)
	}
}

// Decode rebuilds the classified error carried by a workflow failure. A frontend that
// refuses the start (unknown namespace, denied, malformed) is a server error; anything
// else that never reached an activity is a network error.
func Decode(op string, err error) error {
	if err == nil {
		return nil
	}
	if refused(err) {
		return &apierrors.ServerError{StatusCode: http.StatusServiceUnavailable, Body: err.Error()}
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return &apierrors.NetworkError{Op: op, Err: err}
	}
	var d Detail
	if appErr.HasDetails() {
		_ = appErr.Details(&d)
	}
	switch appErr.Type() {
	case TypeNetwork:
		if d.Op == "" {
			d.Op = op
		}
		return &apierrors.NetworkError{Op: d.Op, Err: errors.New(appErr.Message())}
	case TypeServer:
		return &apierrors.ServerError{StatusCode: d.StatusCode, Body: d.Body}
	case TypeValidation:
		return apierrors.NewValidationError(errors.New(d.Message))
	case TypeClient:
		return apierrors.NewClientError(apierrors.ClientErrorKind(d.Kind), d.Message, nil)
	default:
		return err
	}
}

func refused(err error) bool {
	var (
		namespaceErr *serviceerror.NamespaceNotFound
		deniedErr    *serviceerror.PermissionDenied
		invalidErr   *serviceerror.InvalidArgument
	)
	return errors.As(err, &namespaceErr) || errors.As(err, &deniedErr) || errors.As(err, &invalidErr)
}
