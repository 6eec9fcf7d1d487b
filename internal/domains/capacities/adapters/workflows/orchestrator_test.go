package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/failures"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/sequences"
	submissions "github.com/Apurer/vaccine-portal/internal/platform/temporal/workflows/submissions"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

func TestCreateCapacity_StartsRegistrationWorkflow(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.TaskQueue == submissions.TaskQueue && o.ID != ""
	}), submissions.CapacityRegistrationWorkflowName, mock.MatchedBy(func(in submissions.CapacityRegistrationInput) bool {
		return in.Request.ProducerName == "Moderna"
	})).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*domain.Capacity) = domain.Capacity{ID: 5, ProducerName: "Moderna", VaccinesQuantity: 300, ExcessVaccines: 300}
	}).Return(nil)

	capacity, err := NewTemporalCapacityRegistrations(c).CreateCapacity(context.Background(),
		domain.NewCapacityRequest{ProducerName: "Moderna", VaccinesQuantity: 300})
	require.NoError(t, err)
	require.EqualValues(t, 5, capacity.ID)
	c.AssertExpectations(t)
}

func TestCreateCapacity_WaitIsBoundedByDeadline(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	var started client.StartWorkflowOptions
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		started = args.Get(1).(client.StartWorkflowOptions)
	}).Return(run, nil)
	var hasDeadline bool
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		_, hasDeadline = args.Get(0).(context.Context).Deadline()
	}).Return(context.DeadlineExceeded)

	_, err := NewTemporalCapacityRegistrations(c).CreateCapacity(context.Background(), domain.NewCapacityRequest{ProducerName: "Pfizer"})

	require.Equal(t, sequences.SubmissionDeadline, started.WorkflowExecutionTimeout)
	require.True(t, hasDeadline)
	require.LessOrEqual(t, sequences.SubmissionDeadline, 15*time.Second)
	require.True(t, apierrors.Retryable(err))
}

func TestCreateCapacity_DecodesWorkflowFailure(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(run, nil)
	run.On("Get", mock.Anything, mock.Anything).Return(failures.Encode(&apierrors.ServerError{StatusCode: 400, Body: "deadline in the past"}))

	_, err := NewTemporalCapacityRegistrations(c).CreateCapacity(context.Background(), domain.NewCapacityRequest{})
	var serverErr *apierrors.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, 400, serverErr.StatusCode)
	require.False(t, apierrors.Retryable(err))
}

func TestCreateCapacity_UnreachableTemporalIsNetworkError(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	_, err := NewTemporalCapacityRegistrations(c).CreateCapacity(context.Background(), domain.NewCapacityRequest{})
	require.True(t, apierrors.Retryable(err))
}
