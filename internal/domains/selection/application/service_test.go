package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/adapters/memory"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

func TestGet_UnsetKeyYieldsEmptyRecord(t *testing.T) {
	svc := NewService(memory.NewStore())
	rec, err := svc.Get(context.Background(), domain.KeyProducer)
	require.NoError(t, err)
	require.False(t, rec.IsSet())
	require.Equal(t, DefaultProfile, rec.Profile)
}

func TestSet_NotifiesOnlyOnChange(t *testing.T) {
	svc := NewService(memory.NewStore())
	var seen []string
	svc.Subscribe(domain.KeyRegion, func(_ context.Context, rec domain.Record) {
		seen = append(seen, rec.Value)
	})

	_, changed, err := svc.Set(context.Background(), domain.KeyRegion, "Pomorskie")
	require.NoError(t, err)
	require.True(t, changed)

	_, changed, err = svc.Set(context.Background(), domain.KeyRegion, "pomorskie")
	require.NoError(t, err)
	require.False(t, changed)

	_, _, err = svc.Set(context.Background(), domain.KeyRegion, "Opolskie")
	require.NoError(t, err)

	require.Equal(t, []string{"Pomorskie", "Opolskie"}, seen)

	rec, err := svc.Get(context.Background(), domain.KeyRegion)
	require.NoError(t, err)
	require.Equal(t, "Opolskie", rec.Value)
	require.Equal(t, []string{"Opolskie", "Pomorskie"}, rec.Recent)
}

func TestSet_ListenerSeesPersistedValue(t *testing.T) {
	svc := NewService(memory.NewStore())
	var loaded string
	svc.Subscribe(domain.KeyProducer, func(ctx context.Context, _ domain.Record) {
		rec, err := svc.Get(ctx, domain.KeyProducer)
		require.NoError(t, err)
		loaded = rec.Value
	})

	_, _, err := svc.Set(context.Background(), domain.KeyProducer, "Novavax")
	require.NoError(t, err)
	require.Equal(t, "Novavax", loaded)
}

func TestSubscribe_CancelStopsNotifications(t *testing.T) {
	svc := NewService(memory.NewStore())
	calls := 0
	cancel := svc.Subscribe(domain.KeyRegion, func(context.Context, domain.Record) { calls++ })
	cancel()
	cancel()

	_, _, err := svc.Set(context.Background(), domain.KeyRegion, "Lubelskie")
	require.NoError(t, err)
	require.Zero(t, calls)
}

func TestSet_RejectsUnknownValuesAndKeys(t *testing.T) {
	svc := NewService(memory.NewStore())

	_, _, err := svc.Set(context.Background(), domain.KeyRegion, "Texas")
	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, _, err = svc.Set(context.Background(), domain.Key("theme"), "dark")
	require.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestProfilesAreIsolated(t *testing.T) {
	store := memory.NewStore()
	north := NewService(store, WithProfile("north"))
	south := NewService(store, WithProfile("south"))

	_, _, err := north.Set(context.Background(), domain.KeyRegion, "Pomorskie")
	require.NoError(t, err)

	rec, err := south.Get(context.Background(), domain.KeyRegion)
	require.NoError(t, err)
	require.False(t, rec.IsSet())
}

type failingStore struct{ *memory.Store }

func (failingStore) Save(context.Context, domain.Record) error { return errors.New("disk full") }

func TestSet_SaveFailureDoesNotNotify(t *testing.T) {
	svc := NewService(failingStore{memory.NewStore()})
	calls := 0
	svc.Subscribe(domain.KeyRegion, func(context.Context, domain.Record) { calls++ })

	_, _, err := svc.Set(context.Background(), domain.KeyRegion, "Podlaskie")
	require.Error(t, err)
	require.Zero(t, calls)
}
