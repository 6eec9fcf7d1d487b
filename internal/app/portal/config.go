package portal

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/vaccine-portal/internal/clients/http/backend"
	selsqlite "github.com/Apurer/vaccine-portal/internal/domains/selection/adapters/sqlite"
	selapp "github.com/Apurer/vaccine-portal/internal/domains/selection/application"
)

// Selection store kinds accepted by SELECTION_STORE.
const (
	SelectionStoreSQLite   = "sqlite"
	SelectionStorePostgres = "postgres"
	SelectionStoreMemory   = "memory"
)

// Config carries environment-driven settings for the portal and worker processes.
type Config struct {
	Port                string
	BackendBaseURL      string
	BackendTimeout      time.Duration
	SelectionStore      string
	SelectionSQLitePath string
	PostgresDSN         string
	Profile             string
	TemporalAddress     string
	TemporalNamespace   string
	TemporalDisabled    bool
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:                envDefault("PORT", "3000"),
		BackendBaseURL:      envDefault("BACKEND_BASE_URL", "http://localhost:8080"),
		BackendTimeout:      backend.DefaultTimeout,
		SelectionStore:      strings.ToLower(envDefault("SELECTION_STORE", SelectionStoreSQLite)),
		SelectionSQLitePath: envDefault("SELECTION_SQLITE_PATH", selsqlite.DefaultPath),
		PostgresDSN:         strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		Profile:             envDefault("PORTAL_PROFILE", selapp.DefaultProfile),
		TemporalAddress:     envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:   envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:    isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a TCP port number")
	}
	if u, err := url.Parse(cfg.BackendBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("BACKEND_BASE_URL must be an absolute URL")
	}
	if raw := strings.TrimSpace(os.Getenv("BACKEND_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be a positive integer")
		}
		cfg.BackendTimeout = time.Duration(seconds) * time.Second
	}
	switch cfg.SelectionStore {
	case SelectionStoreSQLite, SelectionStoreMemory:
	case SelectionStorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("SELECTION_STORE=postgres requires POSTGRES_DSN")
		}
	default:
		return Config{}, fmt.Errorf("SELECTION_STORE must be one of sqlite, postgres, memory")
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
