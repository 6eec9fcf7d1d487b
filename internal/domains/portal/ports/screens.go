package ports

import (
	"context"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/portal/application"
)

// OrdersScreen is the region orders screen seen by the HTTP surface.
type OrdersScreen interface {
	Open(ctx context.Context) (application.OrdersView, error)
	View() application.OrdersView
	AllOrders(ctx context.Context) application.OrdersView
	Retry(ctx context.Context) (application.OrdersView, error)
	ToggleSort(field string) (application.OrdersView, error)
	SetStatusFilter(raw string) (application.OrdersView, error)
	CreateOrder(ctx context.Context, vaccineQuantity int, expectedDeliveryTime string) (*orderdomain.Order, error)
	Transition(ctx context.Context, orderID int64, target orderdomain.Status) (*orderdomain.Order, error)
}

// ProducerDashboard is the producer dashboard seen by the HTTP surface.
type ProducerDashboard interface {
	Open(ctx context.Context) (application.DashboardView, error)
	View() application.DashboardView
	Retry(ctx context.Context) (application.DashboardView, error)
	ToggleOrderSort(field string) (application.DashboardView, error)
	ToggleCapacitySort(field string) (application.DashboardView, error)
	SetHideEmpty(hide bool) application.DashboardView
	RegisterCapacity(ctx context.Context, vaccinesQuantity, productionDeadline string) (*capdomain.Capacity, error)
	MakePriority(ctx context.Context, orderID int64) (*orderdomain.Order, error)
}

var (
	_ OrdersScreen      = (*application.OrdersScreen)(nil)
	_ ProducerDashboard = (*application.ProducerDashboard)(nil)
)
