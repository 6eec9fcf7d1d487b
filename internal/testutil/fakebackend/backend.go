// Package fakebackend is an in-memory stand-in for the order/capacity service used by tests.
package fakebackend

import (
	"context"
	"slices"
	"sync"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

// Backend records every call and serves orders and capacities from memory.
// Errors set in Fail are returned once per matching call until cleared.
type Backend struct {
	mu         sync.Mutex
	orders     []orderdomain.Order
	capacities []capdomain.Capacity
	nextID     int64
	calls      map[string]int

	// Fail maps an operation name to the error it returns.
	Fail map[string]error
	// Gate, when set for an operation, blocks the call until the channel yields.
	Gate map[string]chan struct{}
}

const (
	OpListAll      = "ListAllOrders"
	OpListRegion   = "ListOrdersByRegion"
	OpListPriority = "ListOrdersByPriority"
	OpListPending  = "ListOrdersByPendingStatus"
	OpCreateOrder  = "CreateOrder"
	OpSetStatus    = "SetOrderStatus"
	OpListCap      = "ListCapacitiesByProducer"
	OpCreateCap    = "CreateCapacity"
)

func New() *Backend {
	return &Backend{
		calls:  map[string]int{},
		Fail:   map[string]error{},
		Gate:   map[string]chan struct{}{},
		nextID: 100,
	}
}

// SeedOrders replaces the stored orders.
func (b *Backend) SeedOrders(orders ...orderdomain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = slices.Clone(orders)
}

// SeedCapacities replaces the stored capacities.
func (b *Backend) SeedCapacities(capacities ...capdomain.Capacity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.capacities = slices.Clone(capacities)
}

// SetFailure makes op fail with err; a nil err clears it.
func (b *Backend) SetFailure(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.Fail, op)
		return
	}
	b.Fail[op] = err
}

// Hold blocks the next calls to op until the returned release function is called.
func (b *Backend) Hold(op string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.Gate[op] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.Gate, op)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how often op was invoked.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// TotalCalls sums every recorded call.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func (b *Backend) enter(ctx context.Context, op string) error {
	b.mu.Lock()
	b.calls[op]++
	gate := b.Gate[op]
	err := b.Fail[op]
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (b *Backend) filterOrders(keep func(orderdomain.Order) bool) []orderdomain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []orderdomain.Order{}
	for _, o := range b.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (b *Backend) ListAllOrders(ctx context.Context) ([]orderdomain.Order, error) {
	if err := b.enter(ctx, OpListAll); err != nil {
		return nil, err
	}
	return b.filterOrders(func(orderdomain.Order) bool { return true }), nil
}

func (b *Backend) ListOrdersByRegion(ctx context.Context, region orderdomain.Region) ([]orderdomain.Order, error) {
	if err := b.enter(ctx, OpListRegion); err != nil {
		return nil, err
	}
	return b.filterOrders(func(o orderdomain.Order) bool { return o.Region == region }), nil
}

func (b *Backend) ListOrdersByPriority(ctx context.Context) ([]orderdomain.Order, error) {
	if err := b.enter(ctx, OpListPriority); err != nil {
		return nil, err
	}
	return b.filterOrders(func(o orderdomain.Order) bool { return o.Status == orderdomain.StatusPriority }), nil
}

func (b *Backend) ListOrdersByPendingStatus(ctx context.Context) ([]orderdomain.Order, error) {
	if err := b.enter(ctx, OpListPending); err != nil {
		return nil, err
	}
	return b.filterOrders(func(o orderdomain.Order) bool { return o.Status == orderdomain.StatusPending }), nil
}

func (b *Backend) CreateOrder(ctx context.Context, req orderdomain.NewOrderRequest) (*orderdomain.Order, error) {
	if err := b.enter(ctx, OpCreateOrder); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	order := orderdomain.Order{
		ID:                   b.nextID,
		Region:               req.Region,
		VaccineQuantity:      req.VaccineQuantity,
		ExpectedDeliveryTime: req.ExpectedDeliveryTime,
		Status:               orderdomain.StatusPending,
	}
	b.orders = append(b.orders, order)
	return &order, nil
}

func (b *Backend) SetOrderStatus(ctx context.Context, orderID int64, status orderdomain.Status) (*orderdomain.Order, error) {
	if err := b.enter(ctx, OpSetStatus); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			b.orders[i].Status = status
			updated := b.orders[i]
			return &updated, nil
		}
	}
	updated := orderdomain.Order{ID: orderID, Status: status}
	return &updated, nil
}

func (b *Backend) ListCapacitiesByProducer(ctx context.Context, producer capdomain.Producer) ([]capdomain.Capacity, error) {
	if err := b.enter(ctx, OpListCap); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []capdomain.Capacity{}
	for _, c := range b.capacities {
		if c.ProducerName == producer {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *Backend) CreateCapacity(ctx context.Context, req capdomain.NewCapacityRequest) (*capdomain.Capacity, error) {
	if err := b.enter(ctx, OpCreateCap); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	capacity := capdomain.Capacity{
		ID:                 b.nextID,
		ProducerName:       req.ProducerName,
		VaccinesQuantity:   req.VaccinesQuantity,
		ExcessVaccines:     req.VaccinesQuantity,
		ProductionDeadline: req.ProductionDeadline,
	}
	b.capacities = append(b.capacities, capacity)
	return &capacity, nil
}
