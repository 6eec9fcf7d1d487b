//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/application"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
	"github.com/Apurer/vaccine-portal/internal/platform/migrations"
)

func setupSelectionPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("portal_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestStore_SaveAndLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSelectionPostgresContainer(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	_, err := store.Load(ctx, "default", domain.KeyRegion)
	require.ErrorIs(t, err, ports.ErrNotFound)

	rec := domain.Record{Profile: "default", Key: domain.KeyRegion}.WithValue("Śląskie", time.Now())
	require.NoError(t, store.Save(ctx, rec))
	rec = rec.WithValue("Lubuskie", time.Now())
	require.NoError(t, store.Save(ctx, rec))

	loaded, err := store.Load(ctx, "default", domain.KeyRegion)
	require.NoError(t, err)
	assert.Equal(t, "Lubuskie", loaded.Value)
	assert.Equal(t, []string{"Lubuskie", "Śląskie"}, loaded.Recent)
}

func TestStore_BacksSelectionService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSelectionPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	first := application.NewService(NewStore(db), application.WithProfile("ops"))
	_, changed, err := first.Set(ctx, domain.KeyProducer, "AstraZeneca")
	require.NoError(t, err)
	require.True(t, changed)

	second := application.NewService(NewStore(db), application.WithProfile("ops"))
	rec, err := second.Get(ctx, domain.KeyProducer)
	require.NoError(t, err)
	assert.Equal(t, "AstraZeneca", rec.Value)

	require.NoError(t, NewStore(db).Reset(ctx, "ops"))
	rec, err = second.Get(ctx, domain.KeyProducer)
	require.NoError(t, err)
	assert.False(t, rec.IsSet())
}
