package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	orderports "github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	seldomain "github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	selports "github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
	"github.com/Apurer/vaccine-portal/internal/views"
)

// Actions name the user-visible operation in error messages.
const (
	ActionFetchOrders    = "Error fetching orders"
	ActionCreateOrder    = "Error creating order"
	ActionUpdateOrder    = "Error updating order"
	ActionLoadOrders     = "Failed to load orders"
	ActionLoadCapacities = "Failed to load capacities"
	ActionRegister       = "Failed to register capacity"
)

// ErrNotInView is returned when an intent names a record the screen is not showing.
var ErrNotInView = errors.New("record is not in the current view")

// OrderRow is one rendered order with the actions the lifecycle allows on it.
type OrderRow struct {
	ID                   int64    `json:"id"`
	Region               string   `json:"region"`
	VaccineQuantity      int      `json:"vaccineQuantity"`
	FulfilledQuantity    int      `json:"fulfilledQuantity"`
	ExpectedDeliveryTime string   `json:"expectedDeliveryTime"`
	Status               string   `json:"status"`
	StatusLabel          string   `json:"statusLabel"`
	AllowedTransitions   []string `json:"allowedTransitions"`
}

// OrdersView is the region orders screen as rendered.
type OrdersView struct {
	Scope        string     `json:"scope"`
	Region       string     `json:"region"`
	SelectionSet bool       `json:"selectionSet"`
	Loaded       bool       `json:"loaded"`
	Columns      []Column   `json:"columns"`
	Rows         []OrderRow `json:"rows"`
	SortField    string     `json:"sortField,omitempty"`
	SortDir      string     `json:"sortDirection,omitempty"`
	StatusFilter string     `json:"statusFilter,omitempty"`
	Error        string     `json:"error,omitempty"`
	Retryable    bool       `json:"retryable"`
}

// View scopes.
const (
	ScopeRegion = "region"
	ScopeAll    = "all"
)

// requestTag identifies one load by the selection it was issued for and its place in the
// screen's load sequence.
type requestTag struct {
	selection  string
	generation uint64
}

// OrdersScreen is the region-facing orders screen. It reloads in full whenever the region
// selection changes or an order mutation marks orders stale.
type OrdersScreen struct {
	orders    orderports.Service
	selection selports.Service
	logger    *slog.Logger

	mu         sync.Mutex
	generation uint64
	region     string
	loaded     bool
	items      []orderdomain.Order
	err        error
	sort       views.Sort
	status     orderdomain.Status

	unsubscribe []func()
}

type ScreenOption func(*screenOptions)

type screenOptions struct {
	logger *slog.Logger
	bus    invalidation.Subscriber
}

// WithScreenLogger sets the logger used for discarded responses and load failures.
func WithScreenLogger(logger *slog.Logger) ScreenOption {
	return func(o *screenOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInvalidation subscribes the screen to stale signals from bus.
func WithInvalidation(bus invalidation.Subscriber) ScreenOption {
	return func(o *screenOptions) {
		o.bus = bus
	}
}

func buildScreenOptions(opts []ScreenOption) screenOptions {
	o := screenOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func NewOrdersScreen(orders orderports.Service, selection selports.Service, opts ...ScreenOption) *OrdersScreen {
	o := buildScreenOptions(opts)
	s := &OrdersScreen{orders: orders, selection: selection, logger: o.logger}
	s.unsubscribe = append(s.unsubscribe, selection.Subscribe(seldomain.KeyRegion, func(ctx context.Context, _ seldomain.Record) {
		_ = s.Reload(ctx)
	}))
	if o.bus != nil {
		s.unsubscribe = append(s.unsubscribe, o.bus.SubscribeAll(func(ctx context.Context, _ invalidation.Topic) {
			_ = s.Reload(ctx)
		}, invalidation.TopicOrders))
	}
	return s
}

// Close detaches the screen from selection and stale signals.
func (s *OrdersScreen) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

// Reload fetches the orders of the selected region and replaces the screen's collection.
// With no region selected nothing is requested. A response overtaken by a newer load or a
// selection change is dropped.
func (s *OrdersScreen) Reload(ctx context.Context) error {
	rec, err := s.selection.Get(ctx, seldomain.KeyRegion)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	tag := requestTag{selection: rec.Value, generation: s.generation}
	s.region = rec.Value
	if !rec.IsSet() {
		s.items, s.err, s.loaded = nil, nil, false
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	orders, fetchErr := s.orders.ListOrdersByRegion(ctx, orderdomain.Region(tag.selection))
	if !s.current(ctx, tag) {
		s.logger.DebugContext(ctx, "discarding stale orders response",
			slog.String("region", tag.selection), slog.Uint64("generation", tag.generation))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tag.generation != s.generation {
		return nil
	}
	s.loaded = true
	if fetchErr != nil {
		s.items, s.err = nil, fetchErr
		s.logger.WarnContext(ctx, "orders load failed", slog.String("region", tag.selection), slog.String("error", fetchErr.Error()))
		return fetchErr
	}
	s.items, s.err = orders, nil
	return nil
}

// current reports whether tag still matches the latest load and the stored selection.
func (s *OrdersScreen) current(ctx context.Context, tag requestTag) bool {
	s.mu.Lock()
	latest := s.generation
	s.mu.Unlock()
	if tag.generation != latest {
		return false
	}
	rec, err := s.selection.Get(ctx, seldomain.KeyRegion)
	return err != nil || rec.Value == tag.selection
}

// Retry issues exactly one fetch for the current selection.
func (s *OrdersScreen) Retry(ctx context.Context) (OrdersView, error) {
	err := s.Reload(ctx)
	return s.View(), err
}

// Open renders the screen, loading it first if the selection has never been fetched.
func (s *OrdersScreen) Open(ctx context.Context) (OrdersView, error) {
	s.mu.Lock()
	needsLoad := !s.loaded
	s.mu.Unlock()
	if needsLoad {
		if err := s.Reload(ctx); err != nil && !isFetchFailure(err) {
			return OrdersView{}, err
		}
	}
	return s.View(), nil
}

// View renders the derived projection without touching the network.
func (s *OrdersScreen) View() OrdersView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.render(s.items, s.err)
	view.Scope = ScopeRegion
	view.Region = s.region
	view.SelectionSet = s.region != ""
	view.Loaded = s.loaded
	return view
}

// AllOrders fetches every order regardless of region and renders it with the screen's
// sort and status filter. The region collection is left untouched.
func (s *OrdersScreen) AllOrders(ctx context.Context) OrdersView {
	orders, err := s.orders.ListAllOrders(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "global orders load failed", slog.String("error", err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.render(orders, err)
	view.Scope = ScopeAll
	view.SelectionSet = true
	view.Loaded = true
	return view
}

// render projects items through the current sort and filter. Callers hold s.mu.
func (s *OrdersScreen) render(items []orderdomain.Order, loadErr error) OrdersView {
	view := OrdersView{
		Columns:      columns(OrderFields),
		Rows:         []OrderRow{},
		SortField:    s.sort.Key,
		SortDir:      string(s.sort.Direction),
		StatusFilter: string(s.status),
	}
	if loadErr != nil {
		view.Error = apierrors.Describe(ActionFetchOrders, loadErr)
		view.Retryable = apierrors.Retryable(loadErr)
		return view
	}
	cfg := views.Config[orderdomain.Order]{Sort: s.sort}
	if s.status != "" {
		cfg.Filter = views.Equals(func(o orderdomain.Order) orderdomain.Status { return o.Status }, s.status)
	}
	projected, err := views.Apply(OrderFields, items, cfg)
	if err != nil {
		view.Error = err.Error()
		return view
	}
	for _, o := range projected {
		view.Rows = append(view.Rows, s.row(o))
	}
	return view
}

func (s *OrdersScreen) row(o orderdomain.Order) OrderRow {
	allowed := s.orders.AllowedTransitions(o)
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

// ToggleSort applies a header click on field.
func (s *OrdersScreen) ToggleSort(field string) (OrdersView, error) {
	if _, err := OrderFields.Field(field); err != nil {
		return OrdersView{}, apierrors.NewClientError(apierrors.KindMalformedRequest, err.Error(), err)
	}
	s.mu.Lock()
	s.sort = s.sort.Toggle(field)
	s.mu.Unlock()
	return s.View(), nil
}

// SetStatusFilter limits rows to one status; "" or "all" shows every status.
func (s *OrdersScreen) SetStatusFilter(raw string) (OrdersView, error) {
	var status orderdomain.Status
	if raw = strings.TrimSpace(raw); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := orderdomain.ParseStatus(raw)
		if err != nil {
			return OrdersView{}, apierrors.NewValidationError(err)
		}
		status = parsed
	}
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	return s.View(), nil
}

// CreateOrder places an order for the selected region.
func (s *OrdersScreen) CreateOrder(ctx context.Context, vaccineQuantity int, expectedDeliveryTime string) (*orderdomain.Order, error) {
	rec, err := s.selection.Get(ctx, seldomain.KeyRegion)
	if err != nil {
		return nil, err
	}
	if !rec.IsSet() {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "select a region first", nil)
	}
	return s.orders.CreateOrder(ctx, orderports.CreateOrderInput{
		Region:               orderdomain.Region(rec.Value),
		VaccineQuantity:      vaccineQuantity,
		ExpectedDeliveryTime: expectedDeliveryTime,
	})
}

// Transition requests target for an order currently shown on the screen.
func (s *OrdersScreen) Transition(ctx context.Context, orderID int64, target orderdomain.Status) (*orderdomain.Order, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(o orderdomain.Order) bool { return o.ID == orderID })
	var order orderdomain.Order
	if idx >= 0 {
		order = s.items[idx]
	}
	s.mu.Unlock()
	if idx < 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotInView)
	}
	return s.orders.RequestTransition(ctx, order, target)
}

// isFetchFailure reports errors already captured in the screen state.
func isFetchFailure(err error) bool {
	var (
		netErr    *apierrors.NetworkError
		serverErr *apierrors.ServerError
		clientErr *apierrors.ClientError
		valErr    *apierrors.ValidationError
	)
	return errors.As(err, &netErr) || errors.As(err, &serverErr) || errors.As(err, &clientErr) || errors.As(err, &valErr)
}
