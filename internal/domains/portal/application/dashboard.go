package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	capports "github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	orderports "github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	seldomain "github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	selports "github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
	"github.com/Apurer/vaccine-portal/internal/views"
)

// RegisteredMessage is shown after a successful capacity registration.
const RegisteredMessage = "Capacity registered successfully!"

// CapacityRow is one rendered capacity.
type CapacityRow struct {
	ID                 int64  `json:"id"`
	ProducerName       string `json:"producerName"`
	VaccinesQuantity   int    `json:"vaccinesQuantity"`
	ExcessVaccines     int    `json:"excessVaccines"`
	Allocated          int    `json:"allocated"`
	ProductionDeadline string `json:"productionDeadline"`
}

// Summary compares outstanding demand with unallocated supply.
type Summary struct {
	OutstandingDemand int    `json:"outstandingDemand"`
	TotalExcess       int    `json:"totalExcess"`
	Coverage          string `json:"coverage,omitempty"`
	Shortfall         int    `json:"shortfall"`
}

// DashboardView is the producer dashboard as rendered.
type DashboardView struct {
	Producer        string        `json:"producer"`
	SelectionSet    bool          `json:"selectionSet"`
	Loaded          bool          `json:"loaded"`
	OrderColumns    []Column      `json:"orderColumns"`
	Orders          []OrderRow    `json:"orders"`
	OrderSort       views.Sort    `json:"orderSort"`
	CapacityColumns []Column      `json:"capacityColumns"`
	Capacities      []CapacityRow `json:"capacities"`
	CapacitySort    views.Sort    `json:"capacitySort"`
	HideEmpty       bool          `json:"hideEmpty"`
	Summary         *Summary      `json:"summary,omitempty"`
	Notice          string        `json:"notice,omitempty"`
	Error           string        `json:"error,omitempty"`
	Retryable       bool          `json:"retryable"`
}

// legError remembers which leg of the dashboard join failed.
type legError struct {
	action string
	err    error
}

func (e *legError) Error() string { return e.action + ": " + e.err.Error() }
func (e *legError) Unwrap() error { return e.err }

// ProducerDashboard shows outstanding priority and pending orders next to the selected
// producer's capacities. Both are loaded together and shown only when every request
// succeeded.
type ProducerDashboard struct {
	orders     orderports.Service
	capacities capports.Service
	selection  selports.Service
	logger     *slog.Logger

	mu           sync.Mutex
	generation   uint64
	producer     string
	loaded       bool
	orderItems   []orderdomain.Order
	capItems     []capdomain.Capacity
	err          *legError
	orderSort    views.Sort
	capacitySort views.Sort
	hideEmpty    bool
	notice       string

	unsubscribe []func()
}

func NewProducerDashboard(orders orderports.Service, capacities capports.Service, selection selports.Service, opts ...ScreenOption) *ProducerDashboard {
	o := buildScreenOptions(opts)
	d := &ProducerDashboard{
		orders:       orders,
		capacities:   capacities,
		selection:    selection,
		logger:       o.logger,
		orderSort:    views.Sort{Key: "expectedDeliveryTime", Direction: views.Asc},
		capacitySort: views.Sort{Key: "productionDeadline", Direction: views.Asc},
	}
	d.unsubscribe = append(d.unsubscribe, selection.Subscribe(seldomain.KeyProducer, func(ctx context.Context, _ seldomain.Record) {
		d.clearNotice()
		_ = d.Reload(ctx)
	}))
	if o.bus != nil {
		d.unsubscribe = append(d.unsubscribe, o.bus.SubscribeAll(func(ctx context.Context, _ invalidation.Topic) {
			_ = d.Reload(ctx)
		}, invalidation.TopicOrders, invalidation.TopicCapacities))
	}
	return d
}

// Close detaches the dashboard from selection and stale signals.
func (d *ProducerDashboard) Close() {
	for _, fn := range d.unsubscribe {
		fn()
	}
	d.unsubscribe = nil
}

// Reload fans out the priority, pending and capacity requests and joins them. Any failure
// fails the whole load and nothing from the other legs is kept.
func (d *ProducerDashboard) Reload(ctx context.Context) error {
	rec, err := d.selection.Get(ctx, seldomain.KeyProducer)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.generation++
	tag := requestTag{selection: rec.Value, generation: d.generation}
	d.producer = rec.Value
	if !rec.IsSet() {
		d.orderItems, d.capItems, d.err, d.loaded = nil, nil, nil, false
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	var priority, pending []orderdomain.Order
	var capacities []capdomain.Capacity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if priority, err = d.orders.ListOrdersByPriority(gctx); err != nil {
			return &legError{action: ActionLoadOrders, err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pending, err = d.orders.ListOrdersByPendingStatus(gctx); err != nil {
			return &legError{action: ActionLoadOrders, err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if capacities, err = d.capacities.ListCapacitiesByProducer(gctx, capdomain.Producer(tag.selection)); err != nil {
			return &legError{action: ActionLoadCapacities, err: err}
		}
		return nil
	})
	joinErr := g.Wait()

	if !d.current(ctx, tag) {
		d.logger.DebugContext(ctx, "discarding stale dashboard response",
			slog.String("producer", tag.selection), slog.Uint64("generation", tag.generation))
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if tag.generation != d.generation {
		return nil
	}
	d.loaded = true
	if joinErr != nil {
		var leg *legError
		if !errors.As(joinErr, &leg) {
			leg = &legError{action: ActionLoadOrders, err: joinErr}
		}
		d.orderItems, d.capItems, d.err = nil, nil, leg
		d.logger.WarnContext(ctx, "dashboard load failed", slog.String("producer", tag.selection), slog.String("error", joinErr.Error()))
		return leg.err
	}
	d.orderItems, d.capItems, d.err = mergeOrders(priority, pending), capacities, nil
	return nil
}

// mergeOrders joins the order legs by ID. An order whose status changed between the two
// requests appears in both; the first occurrence wins.
func mergeOrders(legs ...[]orderdomain.Order) []orderdomain.Order {
	var out []orderdomain.Order
	seen := make(map[int64]struct{})
	for _, leg := range legs {
		for _, o := range leg {
			if _, dup := seen[o.ID]; dup {
				continue
			}
			seen[o.ID] = struct{}{}
			out = append(out, o)
		}
	}
	return out
}

func (d *ProducerDashboard) current(ctx context.Context, tag requestTag) bool {
	d.mu.Lock()
	latest := d.generation
	d.mu.Unlock()
	if tag.generation != latest {
		return false
	}
	rec, err := d.selection.Get(ctx, seldomain.KeyProducer)
	return err != nil || rec.Value == tag.selection
}

// Retry issues exactly one joined load for the current producer.
func (d *ProducerDashboard) Retry(ctx context.Context) (DashboardView, error) {
	err := d.Reload(ctx)
	return d.View(), err
}

// Open renders the dashboard, loading it first if nothing was fetched yet.
func (d *ProducerDashboard) Open(ctx context.Context) (DashboardView, error) {
	d.mu.Lock()
	needsLoad := !d.loaded
	d.mu.Unlock()
	if needsLoad {
		if err := d.Reload(ctx); err != nil && !isFetchFailure(err) {
			return DashboardView{}, err
		}
	}
	return d.View(), nil
}

// View renders both projections and the summary without touching the network.
func (d *ProducerDashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := DashboardView{
		Producer:        d.producer,
		SelectionSet:    d.producer != "",
		Loaded:          d.loaded,
		OrderColumns:    columns(OrderFields),
		Orders:          []OrderRow{},
		OrderSort:       d.orderSort,
		CapacityColumns: columns(CapacityFields),
		Capacities:      []CapacityRow{},
		CapacitySort:    d.capacitySort,
		HideEmpty:       d.hideEmpty,
		Notice:          d.notice,
	}
	if d.err != nil {
		view.Error = apierrors.Describe(d.err.action, d.err.err)
		view.Retryable = apierrors.Retryable(d.err.err)
		return view
	}
	if !d.loaded {
		return view
	}

	orders, err := views.Apply(OrderFields, d.orderItems, views.Config[orderdomain.Order]{Sort: d.orderSort})
	if err != nil {
		view.Error = err.Error()
		return view
	}
	for _, o := range orders {
		view.Orders = append(view.Orders, d.orderRow(o))
	}

	capCfg := views.Config[capdomain.Capacity]{Sort: d.capacitySort}
	if d.hideEmpty {
		capCfg.Filter = views.NotZero(func(c capdomain.Capacity) int { return c.ExcessVaccines })
	}
	capacities, err := views.Apply(CapacityFields, d.capItems, capCfg)
	if err != nil {
		view.Error = err.Error()
		return view
	}
	for _, c := range capacities {
		view.Capacities = append(view.Capacities, CapacityRow{
			ID:                 c.ID,
			ProducerName:       string(c.ProducerName),
			VaccinesQuantity:   c.VaccinesQuantity,
			ExcessVaccines:     c.ExcessVaccines,
			Allocated:          c.Allocated(),
			ProductionDeadline: c.Deadline(),
		})
	}
	summary := Summarize(d.orderItems, d.capItems)
	view.Summary = &summary
	return view
}

func (d *ProducerDashboard) orderRow(o orderdomain.Order) OrderRow {
	allowed := d.orders.AllowedTransitions(o)
	names := make([]string, 0, len(allowed))
	for _, st := range allowed {
		names = append(names, string(st))
	}
	return OrderRow{
		ID:                   o.ID,
		Region:               string(o.Region),
		VaccineQuantity:      o.VaccineQuantity,
		FulfilledQuantity:    o.FulfilledQuantity,
		ExpectedDeliveryTime: o.DeliveryDate(),
		Status:               string(o.Status),
		StatusLabel:          o.Status.Label(),
		AllowedTransitions:   names,
	}
}

// Summarize totals unfulfilled demand against unallocated supply. Coverage is excess over
// demand rounded to two places and is left empty when there is no demand.
func Summarize(orders []orderdomain.Order, capacities []capdomain.Capacity) Summary {
	var s Summary
	for _, o := range orders {
		if outstanding := o.VaccineQuantity - o.FulfilledQuantity; outstanding > 0 {
			s.OutstandingDemand += outstanding
		}
	}
	for _, c := range capacities {
		s.TotalExcess += c.ExcessVaccines
	}
	if s.OutstandingDemand > s.TotalExcess {
		s.Shortfall = s.OutstandingDemand - s.TotalExcess
	}
	if s.OutstandingDemand > 0 {
		ratio := decimal.NewFromInt(int64(s.TotalExcess)).
			DivRound(decimal.NewFromInt(int64(s.OutstandingDemand)), 2)
		s.Coverage = ratio.StringFixed(2)
	}
	return s
}

// ToggleOrderSort applies a header click on the orders table.
func (d *ProducerDashboard) ToggleOrderSort(field string) (DashboardView, error) {
	if _, err := OrderFields.Field(field); err != nil {
		return DashboardView{}, apierrors.NewClientError(apierrors.KindMalformedRequest, err.Error(), err)
	}
	d.mu.Lock()
	d.orderSort = d.orderSort.Toggle(field)
	d.mu.Unlock()
	return d.View(), nil
}

// ToggleCapacitySort applies a header click on the capacities table.
func (d *ProducerDashboard) ToggleCapacitySort(field string) (DashboardView, error) {
	if _, err := CapacityFields.Field(field); err != nil {
		return DashboardView{}, apierrors.NewClientError(apierrors.KindMalformedRequest, err.Error(), err)
	}
	d.mu.Lock()
	d.capacitySort = d.capacitySort.Toggle(field)
	d.mu.Unlock()
	return d.View(), nil
}

// SetHideEmpty hides capacities with no remaining vaccines.
func (d *ProducerDashboard) SetHideEmpty(hide bool) DashboardView {
	d.mu.Lock()
	d.hideEmpty = hide
	d.mu.Unlock()
	return d.View()
}

// RegisterCapacity registers a pledge for the selected producer. The form values are the
// raw inputs so that blank fields can be reported as such.
func (d *ProducerDashboard) RegisterCapacity(ctx context.Context, vaccinesQuantity, productionDeadline string) (*capdomain.Capacity, error) {
	d.clearNotice()
	rec, err := d.selection.Get(ctx, seldomain.KeyProducer)
	if err != nil {
		return nil, err
	}
	if !rec.IsSet() {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "select a producer first", nil)
	}
	created, err := d.capacities.RegisterCapacity(ctx, capports.RegisterCapacityInput{
		Producer:           capdomain.Producer(rec.Value),
		VaccinesQuantity:   vaccinesQuantity,
		ProductionDeadline: productionDeadline,
	})
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.notice = RegisteredMessage
	d.mu.Unlock()
	return created, nil
}

// MakePriority expedites a pending order shown on the dashboard.
func (d *ProducerDashboard) MakePriority(ctx context.Context, orderID int64) (*orderdomain.Order, error) {
	d.mu.Lock()
	var (
		order orderdomain.Order
		found bool
	)
	for _, o := range d.orderItems {
		if o.ID == orderID {
			order, found = o, true
			break
		}
	}
	d.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotInView)
	}
	return d.orders.RequestTransition(ctx, order, orderdomain.StatusPriority)
}

func (d *ProducerDashboard) clearNotice() {
	d.mu.Lock()
	d.notice = ""
	d.mu.Unlock()
}
