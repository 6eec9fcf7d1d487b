//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/vaccine-portal/internal/clients/http/backend"
	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	pacttest "github.com/Apurer/vaccine-portal/test/pact"
)

func orderMatcher(id int64, status string) matchers.Map {
	example := pacttest.ExampleOrderPayload(id, status)
	return matchers.Map{
		"id":                   matchers.Like(example["id"]),
		"region":               matchers.Like(example["region"]),
		"vaccineQuantity":      matchers.Like(example["vaccineQuantity"]),
		"fulfilledQuantity":    matchers.Like(example["fulfilledQuantity"]),
		"expectedDeliveryTime": matchers.Term(example["expectedDeliveryTime"].(string), pacttest.DatePattern),
		"status":               matchers.Term(status, pacttest.StatusTerm),
	}
}

func capacityMatcher() matchers.Map {
	example := pacttest.ExampleCapacityPayload()
	return matchers.Map{
		"id":                 matchers.Like(example["id"]),
		"producerName":       matchers.Like(example["producerName"]),
		"vaccinesQuantity":   matchers.Like(example["vaccinesQuantity"]),
		"excessVaccines":     matchers.Like(example["excessVaccines"]),
		"productionDeadline": matchers.Term(example["productionDeadline"].(string), pacttest.DatePattern),
	}
}

func TestPortalOrderServiceContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json", "application\\/json(?:;\\s?charset=(?:utf|UTF)-8)?")

	pact.AddInteraction().
		Given(pacttest.StateRegionOrders).
		UponReceiving("a request for the orders of a region").
		WithRequest(http.MethodGet, "/api/orders/region/"+pacttest.ExampleRegion).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(orderMatcher(pacttest.PendingOrderID, "PENDING"), 1))
		})

	pact.AddInteraction().
		Given(pacttest.StatePendingOrder).
		UponReceiving("a request to make a pending order priority").
		WithRequest(http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", pacttest.PendingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Query("newStatus", matchers.S("PRIORITY"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher(pacttest.PendingOrderID, "PRIORITY"))
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request to cancel a missing order").
		WithRequest(http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", pacttest.MissingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Query("newStatus", matchers.S("CANCELLED"))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Body("text/plain", []byte("Order not found"))
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to create an order").
		WithRequest(http.MethodPost, "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"region":               matchers.Like(pacttest.ExampleRegion),
				"vaccineQuantity":      matchers.Like(120),
				"expectedDeliveryTime": matchers.Term("2099-05-01", pacttest.DatePattern),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderMatcher(pacttest.PendingOrderID, "PENDING"))
		})

	pact.AddInteraction().
		Given(pacttest.StateProducerPledges).
		UponReceiving("a request for the capacities of a producer").
		WithRequest(http.MethodGet, "/api/producers/capacities/"+pacttest.ExampleProducer).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(capacityMatcher(), 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersBaseline).
		UponReceiving("a request to register a capacity").
		WithRequest(http.MethodPost, "/api/producers/capacities", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"producerName":       matchers.Like(pacttest.ExampleProducer),
				"vaccinesQuantity":   matchers.Like(1000),
				"productionDeadline": matchers.Term("2099-03-01", pacttest.DatePattern),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(capacityMatcher())
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := backend.NewClient(fmt.Sprintf("http://%s:%d", host, config.Port))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		orders, err := client.ListOrdersByRegion(ctx, pacttest.ExampleRegion)
		if err != nil {
			return fmt.Errorf("list region orders: %w", err)
		}
		if len(orders) == 0 || orders[0].Status != orderdomain.StatusPending {
			return fmt.Errorf("expected a pending order, got %+v", orders)
		}

		updated, err := client.SetOrderStatus(ctx, pacttest.PendingOrderID, orderdomain.StatusPriority)
		if err != nil {
			return fmt.Errorf("make priority: %w", err)
		}
		if updated.Status != orderdomain.StatusPriority {
			return fmt.Errorf("expected PRIORITY, got %s", updated.Status)
		}

		_, err = client.SetOrderStatus(ctx, pacttest.MissingOrderID, orderdomain.StatusCancelled)
		var serverErr *apierrors.ServerError
		if !errors.As(err, &serverErr) || serverErr.StatusCode != http.StatusNotFound {
			return fmt.Errorf("expected 404 server error, got %v", err)
		}

		created, err := client.CreateOrder(ctx, orderdomain.NewOrderRequest{
			Region:               pacttest.ExampleRegion,
			VaccineQuantity:      120,
			ExpectedDeliveryTime: time.Date(2099, time.May, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.ID == 0 {
			return fmt.Errorf("expected created order id to be set")
		}

		capacities, err := client.ListCapacitiesByProducer(ctx, pacttest.ExampleProducer)
		if err != nil {
			return fmt.Errorf("list capacities: %w", err)
		}
		if len(capacities) == 0 {
			return fmt.Errorf("expected at least one capacity")
		}

		capacity, err := client.CreateCapacity(ctx, capdomain.NewCapacityRequest{
			ProducerName:       pacttest.ExampleProducer,
			VaccinesQuantity:   1000,
			ProductionDeadline: time.Date(2099, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return fmt.Errorf("register capacity: %w", err)
		}
		if capacity.ExcessVaccines > capacity.VaccinesQuantity {
			return fmt.Errorf("excess %d exceeds pledge %d", capacity.ExcessVaccines, capacity.VaccinesQuantity)
		}
		return nil
	})
	require.NoError(t, err)
}
