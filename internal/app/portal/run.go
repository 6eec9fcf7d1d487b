package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	portalserver "github.com/Apurer/vaccine-portal/go"

	"github.com/Apurer/vaccine-portal/internal/clients/http/backend"
	capobs "github.com/Apurer/vaccine-portal/internal/domains/capacities/adapters/observability"
	capworkflows "github.com/Apurer/vaccine-portal/internal/domains/capacities/adapters/workflows"
	capapp "github.com/Apurer/vaccine-portal/internal/domains/capacities/application"
	capports "github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	orderobs "github.com/Apurer/vaccine-portal/internal/domains/orders/adapters/observability"
	orderworkflows "github.com/Apurer/vaccine-portal/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/vaccine-portal/internal/domains/orders/application"
	orderports "github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	portalapp "github.com/Apurer/vaccine-portal/internal/domains/portal/application"
	selmemory "github.com/Apurer/vaccine-portal/internal/domains/selection/adapters/memory"
	selpostgres "github.com/Apurer/vaccine-portal/internal/domains/selection/adapters/persistence/postgres"
	selsqlite "github.com/Apurer/vaccine-portal/internal/domains/selection/adapters/sqlite"
	selapp "github.com/Apurer/vaccine-portal/internal/domains/selection/application"
	selports "github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
	"github.com/Apurer/vaccine-portal/internal/platform/migrations"
	platformobservability "github.com/Apurer/vaccine-portal/internal/platform/observability"
	platformpostgres "github.com/Apurer/vaccine-portal/internal/platform/postgres"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
)

const serviceName = "vaccine-portal"

// Run boots the portal HTTP surface with observability, the selection store, the remote
// client and optional durable submissions wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.WithProfile(cfg.Profile))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backendClient, err := backend.NewClient(cfg.BackendBaseURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	store, cleanupStore := BuildSelectionStore(ctx, cfg, logger)
	defer cleanupStore()
	selection := selapp.NewService(store, selapp.WithProfile(cfg.Profile))
	bus := invalidation.NewBus()

	var orderSubmitter orderports.Submitter = backendClient
	var capacitySubmitter capports.Submitter = backendClient
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, submitting inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderSubmitter = orderworkflows.NewTemporalOrderSubmissions(temporalClient)
		capacitySubmitter = capworkflows.NewTemporalCapacityRegistrations(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	orderService := orderobs.New(
		orderapp.NewService(backendClient, bus, orderapp.WithSubmitter(orderSubmitter)),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	capacityService := capobs.New(
		capapp.NewService(backendClient, bus, capapp.WithSubmitter(capacitySubmitter)),
		capobs.WithLogger(logger),
		capobs.WithTracer(instruments.Tracer("internal.capacities.application")),
		capobs.WithMeter(instruments.Meter("internal.capacities.application")),
	)

	screen := portalapp.NewOrdersScreen(orderService, selection,
		portalapp.WithScreenLogger(logger), portalapp.WithInvalidation(bus))
	defer screen.Close()
	dashboard := portalapp.NewProducerDashboard(orderService, capacityService, selection,
		portalapp.WithScreenLogger(logger), portalapp.WithInvalidation(bus))
	defer dashboard.Close()

	handlers := portalserver.ApiHandleFunctions{
		SelectionAPI: portalserver.NewSelectionAPI(selection),
		OrdersAPI:    portalserver.NewOrdersAPI(screen),
		ProducerAPI:  portalserver.NewProducerAPI(dashboard),
	}
	router := portalserver.NewRouter(handlers, otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("vaccine portal listening",
		slog.String("addr", addr),
		slog.String("backend", cfg.BackendBaseURL),
		slog.String("profile", cfg.Profile))
	if err := router.Run(addr); err != nil {
		logger.Error("vaccine portal server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// BuildSelectionStore opens the configured selection store. An unreachable postgres falls
// back to the local SQLite file, and an unusable SQLite file falls back to memory.
func BuildSelectionStore(ctx context.Context, cfg Config, logger *slog.Logger) (selports.Store, func()) {
	switch cfg.SelectionStore {
	case SelectionStoreMemory:
		logger.Info("selection store configured in memory")
		return selmemory.NewStore(), func() {}
	case SelectionStorePostgres:
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Warn("failed to connect to postgres, falling back to sqlite selection store", slog.String("error", err.Error()))
			break
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Warn("failed to unwrap postgres connection, falling back to sqlite selection store", slog.String("error", err.Error()))
			break
		}
		if err := migrations.Run(db); err != nil {
			_ = sqlDB.Close()
			logger.Warn("failed to migrate selection tables, falling back to sqlite selection store", slog.String("error", err.Error()))
			break
		}
		logger.Info("selection store configured with postgres")
		return selpostgres.NewStore(db), func() { _ = sqlDB.Close() }
	}
	store, err := selsqlite.Open(cfg.SelectionSQLitePath)
	if err != nil {
		logger.Warn("failed to open sqlite selection store, falling back to memory", slog.String("path", cfg.SelectionSQLitePath), slog.String("error", err.Error()))
		return selmemory.NewStore(), func() {}
	}
	logger.Info("selection store configured with sqlite", slog.String("path", store.Path()))
	return store, func() { _ = store.Close() }
}

// ConnectTemporalClient dials Temporal with tracing and structured logging.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
