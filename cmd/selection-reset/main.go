package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/vaccine-portal/internal/app/portal"
	platformobservability "github.com/Apurer/vaccine-portal/internal/platform/observability"
)

// selection-reset clears the persisted region and producer selections of one profile
// in the configured store.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := portal.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if len(os.Args) > 1 && os.Args[1] != "" {
		cfg.Profile = os.Args[1]
	}

	instruments, shutdown, err := platformobservability.Init(ctx, "vaccine-portal-selection-reset",
		platformobservability.WithProfile(cfg.Profile),
		platformobservability.WithStdoutSpans(),
	)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	logger := instruments.Logger

	store, cleanup := portal.BuildSelectionStore(ctx, cfg, logger)
	defer cleanup()

	if err := store.Reset(ctx, cfg.Profile); err != nil {
		log.Fatalf("failed to reset selections: %v", err)
	}
	logger.Info("selection reset completed", slog.String("profile", cfg.Profile))
}
