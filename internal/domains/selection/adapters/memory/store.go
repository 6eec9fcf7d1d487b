package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
)

var _ ports.Store = (*Store)(nil)

type recordKey struct {
	profile string
	key     domain.Key
}

// Store keeps selections for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	records map[recordKey]domain.Record
}

func NewStore() *Store {
	return &Store{records: map[recordKey]domain.Record{}}
}

func (s *Store) Load(_ context.Context, profile string, key domain.Key) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{profile, key}]
	if !ok {
		return nil, ports.ErrNotFound
	}
	rec.Recent = slices.Clone(rec.Recent)
	return &rec, nil
}

func (s *Store) Save(_ context.Context, record domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.Recent = slices.Clone(record.Recent)
	s.records[recordKey{record.Profile, record.Key}] = record
	return nil
}

func (s *Store) Reset(_ context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.records {
		if k.profile == profile {
			delete(s.records, k)
		}
	}
	return nil
}
