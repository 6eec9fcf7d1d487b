package ports

import (
	"context"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

// Backend is the order side of the remote order/capacity service.
type Backend interface {
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByRegion(ctx context.Context, region domain.Region) ([]domain.Order, error)
	ListOrdersByPriority(ctx context.Context) ([]domain.Order, error)
	ListOrdersByPendingStatus(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.Status) (*domain.Order, error)
}

// Submitter sends a validated creation request. The backend client satisfies it directly;
// a durable workflow runner may stand in for it.
type Submitter interface {
	CreateOrder(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error)
}
