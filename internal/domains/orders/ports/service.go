package ports

import (
	"context"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

// CreateOrderInput carries the raw creation form.
type CreateOrderInput struct {
	Region               domain.Region
	VaccineQuantity      int
	ExpectedDeliveryTime string
}

// Service exposes the order lifecycle to screens and transport adapters.
type Service interface {
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByRegion(ctx context.Context, region domain.Region) ([]domain.Order, error)
	ListOrdersByPriority(ctx context.Context) ([]domain.Order, error)
	ListOrdersByPendingStatus(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	RequestTransition(ctx context.Context, order domain.Order, target domain.Status) (*domain.Order, error)
	AllowedTransitions(order domain.Order) []domain.Status
}
