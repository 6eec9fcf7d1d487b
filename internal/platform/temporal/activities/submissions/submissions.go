package submissions

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	capports "github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	orderports "github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	"github.com/Apurer/vaccine-portal/internal/platform/temporal/failures"
)

const (
	// SubmitOrderActivityName posts a validated order to the order service.
	SubmitOrderActivityName = "orders.activities.SubmitOrder"
	// RegisterCapacityActivityName posts a validated capacity pledge to the order service.
	RegisterCapacityActivityName = "capacities.activities.RegisterCapacity"
)

// Activities sends submissions to the order service on behalf of durable workflows.
type Activities struct {
	orders     orderports.Submitter
	capacities capports.Submitter
}

// NewActivities wires the remote submitters into the activities bundle. Both are usually
// the same backend client.
func NewActivities(orders orderports.Submitter, capacities capports.Submitter) *Activities {
	return &Activities{orders: orders, capacities: capacities}
}

// SubmitOrder creates an order. Failures come back as non-retryable application errors
// that keep their client classification.
func (a *Activities) SubmitOrder(ctx context.Context, req orderdomain.NewOrderRequest) (*orderdomain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.orders == nil {
		logger.Error("order submission activity not initialized", "region", req.Region)
		return nil, temporal.NewNonRetryableApplicationError("order submission activity not initialized", "", nil)
	}
	logger.Info("SubmitOrder activity started", "region", req.Region, "vaccineQuantity", req.VaccineQuantity)
	created, err := a.orders.CreateOrder(ctx, req)
	if err != nil {
		logger.Error("SubmitOrder activity failed", "region", req.Region, "error", err)
		return nil, failures.Encode(err)
	}
	logger.Info("SubmitOrder activity completed", "orderId", created.ID)
	return created, nil
}

// RegisterCapacity creates a capacity pledge.
func (a *Activities) RegisterCapacity(ctx context.Context, req capdomain.NewCapacityRequest) (*capdomain.Capacity, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.capacities == nil {
		logger.Error("capacity registration activity not initialized", "producer", req.ProducerName)
		return nil, temporal.NewNonRetryableApplicationError("capacity registration activity not initialized", "", nil)
	}
	logger.Info("RegisterCapacity activity started", "producer", req.ProducerName, "vaccinesQuantity", req.VaccinesQuantity)
	created, err := a.capacities.CreateCapacity(ctx, req)
	if err != nil {
		logger.Error("RegisterCapacity activity failed", "producer", req.ProducerName, "error", err)
		return nil, failures.Encode(err)
	}
	logger.Info("RegisterCapacity activity completed", "capacityId", created.ID)
	return created, nil
}
