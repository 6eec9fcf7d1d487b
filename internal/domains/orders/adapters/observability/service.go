package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

const tracerName = "github.com/Apurer/vaccine-portal/internal/domains/orders/adapters/observability/service"

// Service decorates the order lifecycle with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core order service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.ListAllOrders")
	defer span.End()

	result, err := s.inner.ListAllOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) ListOrdersByRegion(ctx context.Context, region domain.Region) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.ListOrdersByRegion",
		trace.WithAttributes(attribute.String("order.region", string(region))))
	defer span.End()

	s.logInfo(ctx, "loading region orders", slog.String("region", string(region)))
	result, err := s.inner.ListOrdersByRegion(ctx, region)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load region orders", slog.String("region", string(region)))
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) ListOrdersByPriority(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.ListOrdersByPriority")
	defer span.End()

	result, err := s.inner.ListOrdersByPriority(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load priority orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) ListOrdersByPendingStatus(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.ListOrdersByPendingStatus")
	defer span.End()

	result, err := s.inner.ListOrdersByPendingStatus(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load pending orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.CreateOrder",
		trace.WithAttributes(
			attribute.String("order.region", string(input.Region)),
			attribute.Int("order.vaccine_quantity", input.VaccineQuantity),
		))
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("region", string(input.Region)), slog.Int("quantity", input.VaccineQuantity))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("region", string(input.Region)))
	}
	s.metrics.recordCreated(ctx, result.Region)
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.logInfo(ctx, "order created", slog.Int64("order.id", result.ID))
	return result, nil
}

func (s *Service) RequestTransition(ctx context.Context, order domain.Order, target domain.Status) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderLifecycle.RequestTransition",
		trace.WithAttributes(
			attribute.Int64("order.id", order.ID),
			attribute.String("order.status.from", string(order.Status)),
			attribute.String("order.status.to", string(target)),
		))
	defer span.End()

	s.logInfo(ctx, "requesting transition", slog.Int64("order.id", order.ID),
		slog.String("from", string(order.Status)), slog.String("to", string(target)))
	result, err := s.inner.RequestTransition(ctx, order, target)
	if err != nil {
		if errors.Is(err, apierrors.ErrInvalidTransition) {
			s.metrics.recordRefused(ctx, order.Status, target)
		}
		return nil, s.handleError(ctx, span, err, "transition failed", slog.Int64("order.id", order.ID))
	}
	s.metrics.recordTransition(ctx, result.Status)
	s.logInfo(ctx, "order transitioned", slog.Int64("order.id", result.ID), slog.String("status", string(result.Status)))
	return result, nil
}

func (s *Service) AllowedTransitions(order domain.Order) []domain.Status {
	return s.inner.AllowedTransitions(order)
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersCreated      metric.Int64Counter
	transitions        metric.Int64Counter
	transitionsRefused metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.lifecycle.orders_created", metric.WithDescription("Number of orders created"))
	transitions, _ := m.Int64Counter("orders.lifecycle.transitions", metric.WithDescription("Number of confirmed status transitions"))
	refused, _ := m.Int64Counter("orders.lifecycle.transitions_refused", metric.WithDescription("Number of transitions refused locally"))
	return serviceMetrics{ordersCreated: created, transitions: transitions, transitionsRefused: refused}
}

func (m serviceMetrics) recordCreated(ctx context.Context, region domain.Region) {
	if m.ordersCreated != nil {
		m.ordersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.region", string(region))))
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordRefused(ctx context.Context, from, to domain.Status) {
	if m.transitionsRefused != nil {
		m.transitionsRefused.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.status.from", string(from)),
			attribute.String("order.status.to", string(to)),
		))
	}
}

var _ ports.Service = (*Service)(nil)
