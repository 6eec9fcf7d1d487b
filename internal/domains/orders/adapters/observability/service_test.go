package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/application"
	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/testutil/fakebackend"
)

func counterTotals(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	totals := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	return totals
}

func TestService_RecordsTransitionsAndRefusals(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	backend := fakebackend.New()
	backend.SeedOrders(domain.Order{ID: 3, Region: "Opolskie", Status: domain.StatusPending})
	svc := New(application.NewService(backend, nil),
		WithTracer(tp.Tracer("test")),
		WithMeter(mp.Meter("test")),
	)

	_, err := svc.RequestTransition(context.Background(), domain.Order{ID: 3, Status: domain.StatusPending}, domain.StatusPriority)
	require.NoError(t, err)
	_, err = svc.RequestTransition(context.Background(), domain.Order{ID: 3, Status: domain.StatusCancelled}, domain.StatusPending)
	require.Error(t, err)

	totals := counterTotals(t, reader)
	require.EqualValues(t, 1, totals["orders.lifecycle.transitions"])
	require.EqualValues(t, 1, totals["orders.lifecycle.transitions_refused"])

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "OrderLifecycle.RequestTransition", spans[0].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
}
