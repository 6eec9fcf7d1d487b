package ports

import (
	"context"
	"errors"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
)

var ErrNotFound = errors.New("selection not found")

// Store persists selection records per profile.
type Store interface {
	Load(ctx context.Context, profile string, key domain.Key) (*domain.Record, error)
	Save(ctx context.Context, record domain.Record) error
	Reset(ctx context.Context, profile string) error
}

// Listener is told about a changed selection after it has been persisted.
type Listener func(ctx context.Context, record domain.Record)

// Service is the selection store seen by screens and transport adapters.
type Service interface {
	Get(ctx context.Context, key domain.Key) (domain.Record, error)
	Set(ctx context.Context, key domain.Key, value string) (domain.Record, bool, error)
	Subscribe(key domain.Key, fn Listener) (cancel func())
}
