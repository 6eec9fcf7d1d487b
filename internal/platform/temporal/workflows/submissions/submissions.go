package submissions

import (
	"go.temporal.io/sdk/workflow"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	activities "github.com/Apurer/vaccine-portal/internal/platform/temporal/activities/submissions"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/sequences"
)

const (
	// OrderSubmissionWorkflowName is the registered name of the order submission workflow.
	OrderSubmissionWorkflowName = "orders.workflows.Submission"
	// CapacityRegistrationWorkflowName is the registered name of the capacity registration workflow.
	CapacityRegistrationWorkflowName = "capacities.workflows.Registration"
	// TaskQueue is consumed by the worker processing submissions.
	TaskQueue = "VACCINE_SUBMISSIONS"
)

// OrderSubmissionInput is a validated order plus the trace that requested it.
type OrderSubmissionInput struct {
	Request orderdomain.NewOrderRequest
	TraceID string
}

// CapacityRegistrationInput is a validated capacity pledge plus the trace that requested it.
type CapacityRegistrationInput struct {
	Request capdomain.NewCapacityRequest
	TraceID string
}

// OrderSubmissionWorkflow creates one order.
func OrderSubmissionWorkflow(ctx workflow.Context, input OrderSubmissionInput) (*orderdomain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderSubmissionWorkflow started", withTraceID(input.TraceID, "region", input.Request.Region)...)
	order, err := sequences.RunSubmission[orderdomain.Order](ctx, activities.SubmitOrderActivityName, input.Request)
	if err != nil {
		logger.Error("OrderSubmissionWorkflow failed", withTraceID(input.TraceID, "region", input.Request.Region, "error", err)...)
		return nil, err
	}
	logger.Info("OrderSubmissionWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

// CapacityRegistrationWorkflow registers one capacity pledge.
func CapacityRegistrationWorkflow(ctx workflow.Context, input CapacityRegistrationInput) (*capdomain.Capacity, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CapacityRegistrationWorkflow started", withTraceID(input.TraceID, "producer", input.Request.ProducerName)...)
	capacity, err := sequences.RunSubmission[capdomain.Capacity](ctx, activities.RegisterCapacityActivityName, input.Request)
	if err != nil {
		logger.Error("CapacityRegistrationWorkflow failed", withTraceID(input.TraceID, "producer", input.Request.ProducerName, "error", err)...)
		return nil, err
	}
	logger.Info("CapacityRegistrationWorkflow completed", withTraceID(input.TraceID, "capacityId", capacity.ID)...)
	return capacity, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
