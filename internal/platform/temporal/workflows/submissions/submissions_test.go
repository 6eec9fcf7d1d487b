package submissions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	activities "github.com/Apurer/vaccine-portal/internal/platform/temporal/activities/submissions"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/failures"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/testutil/fakebackend"
)

func newEnv(t *testing.T, backend *fakebackend.Backend) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := activities.NewActivities(backend, backend)
	env.RegisterActivityWithOptions(acts.SubmitOrder, activity.RegisterOptions{Name: activities.SubmitOrderActivityName})
	env.RegisterActivityWithOptions(acts.RegisterCapacity, activity.RegisterOptions{Name: activities.RegisterCapacityActivityName})
	return env
}

func TestOrderSubmissionWorkflow_ReturnsCreatedOrder(t *testing.T) {
	backend := fakebackend.New()
	env := newEnv(t, backend)

	env.ExecuteWorkflow(OrderSubmissionWorkflow, OrderSubmissionInput{
		Request: orderdomain.NewOrderRequest{
			Region:               "Opolskie",
			VaccineQuantity:      30,
			ExpectedDeliveryTime: time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC),
		},
		TraceID: "trace-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var order orderdomain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	require.Equal(t, orderdomain.StatusPending, order.Status)
	require.Equal(t, orderdomain.Region("Opolskie"), order.Region)
	require.Equal(t, 1, backend.Calls(fakebackend.OpCreateOrder))
}

func TestOrderSubmissionWorkflow_DoesNotRetryAndKeepsClass(t *testing.T) {
	backend := fakebackend.New()
	backend.SetFailure(fakebackend.OpCreateOrder, &apierrors.NetworkError{Op: "create order"})
	env := newEnv(t, backend)

	env.ExecuteWorkflow(OrderSubmissionWorkflow, OrderSubmissionInput{
		Request: orderdomain.NewOrderRequest{Region: "Opolskie", VaccineQuantity: 30},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	require.Equal(t, 1, backend.Calls(fakebackend.OpCreateOrder))
	require.True(t, apierrors.Retryable(failures.Decode("submit order", err)))
}

func TestCapacityRegistrationWorkflow_ServerErrorSurvives(t *testing.T) {
	backend := fakebackend.New()
	backend.SetFailure(fakebackend.OpCreateCap, &apierrors.ServerError{StatusCode: 400, Body: "Production deadline must be in the future"})
	env := newEnv(t, backend)

	env.ExecuteWorkflow(CapacityRegistrationWorkflow, CapacityRegistrationInput{
		Request: capdomain.NewCapacityRequest{ProducerName: "Moderna", VaccinesQuantity: 10},
	})

	require.True(t, env.IsWorkflowCompleted())
	decoded := failures.Decode("register capacity", env.GetWorkflowError())
	var serverErr *apierrors.ServerError
	require.ErrorAs(t, decoded, &serverErr)
	require.Equal(t, 400, serverErr.StatusCode)
	require.Equal(t, "Production deadline must be in the future", serverErr.Body)
	require.Equal(t, 1, backend.Calls(fakebackend.OpCreateCap))
}

func TestCapacityRegistrationWorkflow_ReturnsCapacity(t *testing.T) {
	backend := fakebackend.New()
	env := newEnv(t, backend)

	env.ExecuteWorkflow(CapacityRegistrationWorkflow, CapacityRegistrationInput{
		Request: capdomain.NewCapacityRequest{ProducerName: "Moderna", VaccinesQuantity: 10},
	})

	require.NoError(t, env.GetWorkflowError())
	var capacity capdomain.Capacity
	require.NoError(t, env.GetWorkflowResult(&capacity))
	require.Equal(t, 10, capacity.ExcessVaccines)
}
