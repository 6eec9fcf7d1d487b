package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
	"github.com/Apurer/vaccine-portal/internal/testutil/fakebackend"
)

func TestRegisterCapacity_ValidatesBeforeSubmitting(t *testing.T) {
	cases := []struct {
		name  string
		input ports.RegisterCapacityInput
		want  error
	}{
		{"empty quantity", ports.RegisterCapacityInput{Producer: "Pfizer", ProductionDeadline: "2026-06-01"}, domain.ErrMissingFields},
		{"empty deadline", ports.RegisterCapacityInput{Producer: "Pfizer", VaccinesQuantity: "10"}, domain.ErrMissingFields},
		{"negative quantity", ports.RegisterCapacityInput{Producer: "Pfizer", VaccinesQuantity: "-5", ProductionDeadline: "2026-06-01"}, domain.ErrInvalidQuantity},
		{"bad deadline", ports.RegisterCapacityInput{Producer: "Pfizer", VaccinesQuantity: "5", ProductionDeadline: "06/01/2026"}, domain.ErrInvalidDeadline},
		{"unknown producer", ports.RegisterCapacityInput{Producer: "Acme", VaccinesQuantity: "5", ProductionDeadline: "2026-06-01"}, domain.ErrUnknownProducer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := fakebackend.New()
			svc := NewService(backend, nil)
			_, err := svc.RegisterCapacity(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.want)
			var validationErr *apierrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Zero(t, backend.TotalCalls())
		})
	}
}

func TestRegisterCapacity_SubmitsAndMarksStale(t *testing.T) {
	backend := fakebackend.New()
	bus := invalidation.NewBus()
	var stale []invalidation.Topic
	bus.Subscribe(invalidation.TopicCapacities, func(_ context.Context, topic invalidation.Topic) {
		stale = append(stale, topic)
	})
	svc := NewService(backend, bus)

	created, err := svc.RegisterCapacity(context.Background(), ports.RegisterCapacityInput{
		Producer:           "Johnson & Johnson",
		VaccinesQuantity:   " 1200 ",
		ProductionDeadline: "2026-06-01",
	})
	require.NoError(t, err)
	require.Equal(t, domain.Producer("Johnson & Johnson"), created.ProducerName)
	require.Equal(t, 1200, created.VaccinesQuantity)
	require.Equal(t, "2026-06-01", created.Deadline())
	require.Equal(t, []invalidation.Topic{invalidation.TopicCapacities}, stale)
}

func TestRegisterCapacity_RemoteFailurePropagates(t *testing.T) {
	backend := fakebackend.New()
	backend.SetFailure(fakebackend.OpCreateCap, &apierrors.NetworkError{Op: "create capacity"})
	svc := NewService(backend, nil)

	_, err := svc.RegisterCapacity(context.Background(), ports.RegisterCapacityInput{
		Producer: "Moderna", VaccinesQuantity: "10", ProductionDeadline: "2026-06-01",
	})
	require.True(t, apierrors.Retryable(err))
}

func TestListCapacities_RequiresProducer(t *testing.T) {
	backend := fakebackend.New()
	backend.SeedCapacities(
		domain.Capacity{ID: 1, ProducerName: "Pfizer", VaccinesQuantity: 10, ExcessVaccines: 4},
		domain.Capacity{ID: 2, ProducerName: "Moderna", VaccinesQuantity: 10},
	)
	svc := NewService(backend, nil)

	_, err := svc.ListCapacitiesByProducer(context.Background(), "")
	var clientErr *apierrors.ClientError
	require.ErrorAs(t, err, &clientErr)
	require.Equal(t, apierrors.KindSelectionUnset, clientErr.Kind)

	list, err := svc.ListCapacitiesByProducer(context.Background(), "Pfizer")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 6, list[0].Allocated())
}
