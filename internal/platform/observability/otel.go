package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// Reader collects portal counters on demand; nil when metrics are disabled.
	Reader *sdkmetric.ManualReader
}

// Option adjusts process telemetry before Init builds it.
type Option func(*settings)

type settings struct {
	level        slog.Level
	logOutput    io.Writer
	environment  string
	profile      string
	otlpEndpoint string
	otlpInsecure bool
	stdoutSpans  bool
}

// WithLogLevel overrides the LOG_LEVEL environment variable.
func WithLogLevel(level slog.Level) Option {
	return func(s *settings) { s.level = level }
}

// WithLogOutput redirects the JSON log stream, stdout by default.
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.logOutput = w
		}
	}
}

// WithProfile tags spans and logs with the selection profile the process serves.
func WithProfile(profile string) Option {
	return func(s *settings) { s.profile = strings.TrimSpace(profile) }
}

// WithStdoutSpans skips the OTLP exporter and pretty-prints spans to stdout.
func WithStdoutSpans() Option {
	return func(s *settings) { s.stdoutSpans = true }
}

func settingsFromEnv() settings {
	return settings{
		level:        LogLevel(os.Getenv("LOG_LEVEL")),
		logOutput:    os.Stdout,
		environment:  envOrDefault("ENVIRONMENT", "local"),
		otlpEndpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		otlpInsecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0",
	}
}

// Init configures slog, tracing and meters for the portal, the worker or an ops tool.
// The returned shutdown flushes pending spans.
func Init(ctx context.Context, serviceName string, opts ...Option) (*Instruments, func(context.Context) error, error) {
	s := settingsFromEnv()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	logger := newLogger(s, serviceName)

	attrs := []attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", s.environment),
	}
	if s.profile != "" {
		attrs = append(attrs, attribute.String("portal.profile", s.profile))
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, nil, err
	}

	spanExporter, err := newSpanExporter(ctx, s, logger)
	if err != nil {
		return nil, nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spanExporter),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	return &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Reader:         reader,
	}, shutdown, nil
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(s settings, serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(s.logOutput, &slog.HandlerOptions{Level: s.level, AddSource: true})
	logger := slog.New(handler).With(slog.String("service", serviceName))
	if s.profile != "" {
		logger = logger.With(slog.String("profile", s.profile))
	}
	slog.SetDefault(logger)
	return logger
}

// LogLevel parses LOG_LEVEL. Discarded stale responses are only visible at debug.
func LogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newSpanExporter(ctx context.Context, s settings, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	if s.stdoutSpans {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	var opts []otlptracehttp.Option
	if s.otlpEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(s.otlpEndpoint))
	}
	if s.otlpInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("OTLP trace exporter unavailable, writing spans to stdout", slog.String("error", err.Error()))
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
