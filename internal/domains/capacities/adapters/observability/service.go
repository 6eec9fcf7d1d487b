package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
)

const tracerName = "github.com/Apurer/vaccine-portal/internal/domains/capacities/adapters/observability/service"

// Service decorates capacity use cases with tracing, logging, and metrics.
type Service struct {
	inner      ports.Service
	tracer     trace.Tracer
	logger     *slog.Logger
	registered metric.Int64Counter
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
		if m == nil {
			return
		}
		s.registered, _ = m.Int64Counter("capacities.service.capacities_registered", metric.WithDescription("Number of capacities registered"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func (s *Service) ListCapacitiesByProducer(ctx context.Context, producer domain.Producer) ([]domain.Capacity, error) {
	ctx, span := s.tracer.Start(ctx, "CapacityService.ListCapacitiesByProducer",
		trace.WithAttributes(attribute.String("capacity.producer", string(producer))))
	defer span.End()

	result, err := s.inner.ListCapacitiesByProducer(ctx, producer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load capacities", slog.String("producer", string(producer)))
	}
	span.SetAttributes(attribute.Int("capacities.count", len(result)))
	return result, nil
}

func (s *Service) RegisterCapacity(ctx context.Context, input ports.RegisterCapacityInput) (*domain.Capacity, error) {
	ctx, span := s.tracer.Start(ctx, "CapacityService.RegisterCapacity",
		trace.WithAttributes(attribute.String("capacity.producer", string(input.Producer))))
	defer span.End()

	s.logger.LogAttrs(ctx, slog.LevelInfo, "registering capacity", slog.String("producer", string(input.Producer)))
	result, err := s.inner.RegisterCapacity(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register capacity", slog.String("producer", string(input.Producer)))
	}
	if s.registered != nil {
		s.registered.Add(ctx, int64(result.VaccinesQuantity),
			metric.WithAttributes(attribute.String("capacity.producer", string(result.ProducerName))))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "capacity registered", slog.Int64("capacity.id", result.ID))
	return result, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
