package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/failures"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/sequences"
	submissions "github.com/Apurer/vaccine-portal/internal/platform/temporal/workflows/submissions"
)

var _ ports.Submitter = (*TemporalOrderSubmissions)(nil)

// TemporalOrderSubmissions runs order creation as a Temporal workflow and waits for it.
type TemporalOrderSubmissions struct {
	client    client.Client
	taskQueue string
}

func NewTemporalOrderSubmissions(c client.Client) *TemporalOrderSubmissions {
	return &TemporalOrderSubmissions{client: c, taskQueue: submissions.TaskQueue}
}

// CreateOrder starts the submission workflow. Failures carry the same classification a
// direct backend call would have produced.
func (o *TemporalOrderSubmissions) CreateOrder(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order submissions not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, sequences.SubmissionDeadline)
	defer cancel()
	options := client.StartWorkflowOptions{
		ID:                       submissions.WorkflowID(ctx, "order-submission"),
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: sequences.SubmissionDeadline,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, submissions.OrderSubmissionWorkflowName,
		submissions.OrderSubmissionInput{Request: req, TraceID: submissions.TraceID(ctx)})
	if err != nil {
		return nil, failures.Decode("submit order", err)
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, failures.Decode("submit order", err)
	}
	return &order, nil
}
