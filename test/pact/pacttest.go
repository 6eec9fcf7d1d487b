//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "vaccine-order-service"
	ConsumerName = "vaccine-portal"

	StateRegionOrders    = "orders exist for region Opolskie"
	StatePendingOrder    = "order with id 301 is pending"
	StateOrderMissing    = "no order with id 999"
	StateOrdersBaseline  = "orders baseline"
	StateProducerPledges = "capacities exist for producer Pfizer"
)

const (
	ExampleRegion   = "Opolskie"
	ExampleProducer = "Pfizer"

	PendingOrderID int64 = 301
	MissingOrderID int64 = 999

	DatePattern = `^\d{4}-\d{2}-\d{2}$`
	StatusTerm  = "PENDING|PRIORITY|FULFILLED|CANCELLED"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderPayload is an order as the order service renders it.
func ExampleOrderPayload(id int64, status string) map[string]any {
	return map[string]any{
		"id":                   id,
		"region":               ExampleRegion,
		"vaccineQuantity":      120,
		"fulfilledQuantity":    0,
		"expectedDeliveryTime": "2099-05-01",
		"status":               status,
	}
}

// ExampleCapacityPayload is a capacity as the order service renders it.
func ExampleCapacityPayload() map[string]any {
	return map[string]any{
		"id":                 41,
		"producerName":       ExampleProducer,
		"vaccinesQuantity":   1000,
		"excessVaccines":     880,
		"productionDeadline": "2099-03-01",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
