package ports

import (
	"context"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
)

// Backend is the capacity side of the remote order/capacity service.
type Backend interface {
	ListCapacitiesByProducer(ctx context.Context, producer domain.Producer) ([]domain.Capacity, error)
	CreateCapacity(ctx context.Context, req domain.NewCapacityRequest) (*domain.Capacity, error)
}

// Submitter sends a validated registration.
type Submitter interface {
	CreateCapacity(ctx context.Context, req domain.NewCapacityRequest) (*domain.Capacity, error)
}

// RegisterCapacityInput carries the raw registration form.
type RegisterCapacityInput struct {
	Producer           domain.Producer
	VaccinesQuantity   string
	ProductionDeadline string
}

// Service exposes capacity use cases to screens and transport adapters.
type Service interface {
	ListCapacitiesByProducer(ctx context.Context, producer domain.Producer) ([]domain.Capacity, error)
	RegisterCapacity(ctx context.Context, input RegisterCapacityInput) (*domain.Capacity, error)
}
