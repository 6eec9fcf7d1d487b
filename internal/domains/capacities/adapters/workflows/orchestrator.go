package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/failures"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/sequences"
	submissions "github.com/Apurer/vaccine-portal/internal/platform/temporal/workflows/submissions"
)

var _ ports.Submitter = (*TemporalCapacityRegistrations)(nil)

// TemporalCapacityRegistrations runs capacity registration as a Temporal workflow.
type TemporalCapacityRegistrations struct {
	client    client.Client
	taskQueue string
}

func NewTemporalCapacityRegistrations(c client.Client) *TemporalCapacityRegistrations {
	return &TemporalCapacityRegistrations{client: c, taskQueue: submissions.TaskQueue}
}

func (o *TemporalCapacityRegistrations) CreateCapacity(ctx context.Context, req domain.NewCapacityRequest) (*domain.Capacity, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal capacity registrations not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, sequences.SubmissionDeadline)
	defer cancel()
	options := client.StartWorkflowOptions{
		ID:                       submissions.WorkflowID(ctx, "capacity-registration"),
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: sequences.SubmissionDeadline,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, submissions.CapacityRegistrationWorkflowName,
		submissions.CapacityRegistrationInput{Request: req, TraceID: submissions.TraceID(ctx)})
	if err != nil {
		return nil, failures.Decode("register capacity", err)
	}
	var capacity domain.Capacity
	if err := run.Get(ctx, &capacity); err != nil {
		return nil, failures.Decode("register capacity", err)
	}
	return &capacity, nil
}
