package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
)

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "selection.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.Record{Profile: "default", Key: domain.KeyRegion}.WithValue("Opolskie", at)
	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded, err := reopened.Load(ctx, "default", domain.KeyRegion)
	require.NoError(t, err)
	require.Equal(t, "Opolskie", loaded.Value)
	require.Equal(t, []string{"Opolskie"}, loaded.Recent)
	require.True(t, at.Equal(loaded.UpdatedAt))
}

func TestStore_UpsertAndReset(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "selection.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Load(ctx, "default", domain.KeyProducer)
	require.ErrorIs(t, err, ports.ErrNotFound)

	rec := domain.Record{Profile: "default", Key: domain.KeyProducer}
	rec = rec.WithValue("Pfizer", time.Now())
	require.NoError(t, store.Save(ctx, rec))
	rec = rec.WithValue("Moderna", time.Now())
	require.NoError(t, store.Save(ctx, rec))
	require.NoError(t, store.Save(ctx, domain.Record{Profile: "other", Key: domain.KeyProducer, Value: "Novavax", UpdatedAt: time.Now()}))

	loaded, err := store.Load(ctx, "default", domain.KeyProducer)
	require.NoError(t, err)
	require.Equal(t, "Moderna", loaded.Value)
	require.Equal(t, []string{"Moderna", "Pfizer"}, loaded.Recent)

	require.NoError(t, store.Reset(ctx, "default"))
	_, err = store.Load(ctx, "default", domain.KeyProducer)
	require.ErrorIs(t, err, ports.ErrNotFound)

	other, err := store.Load(ctx, "other", domain.KeyProducer)
	require.NoError(t, err)
	require.Equal(t, "Novavax", other.Value)
	require.Empty(t, other.Recent)
}
