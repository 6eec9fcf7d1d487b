package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

// Service is the persistent selection store. Setting a different value persists it and
// then notifies the key's subscribers in subscription order; setting the current value
// is a no-op.
type Service struct {
	store   ports.Store
	profile string
	now     func() time.Time

	setMu sync.Mutex

	mu        sync.Mutex
	listeners map[domain.Key][]subscription
	nextID    int
}

type subscription struct {
	id int
	fn ports.Listener
}

type Option func(*Service)

// WithProfile scopes every record to profile.
func WithProfile(profile string) Option {
	return func(s *Service) {
		if profile != "" {
			s.profile = profile
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		profile:   DefaultProfile,
		now:       time.Now,
		listeners: map[domain.Key][]subscription{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Profile returns the profile records are scoped to.
func (s *Service) Profile() string { return s.profile }

// Get returns the current record for key; an unset key yields a record with an empty value.
func (s *Service) Get(ctx context.Context, key domain.Key) (domain.Record, error) {
	if !key.IsValid() {
		return domain.Record{}, unknownKey(key)
	}
	rec, err := s.store.Load(ctx, s.profile, key)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.Record{Profile: s.profile, Key: key}, nil
	}
	if err != nil {
		return domain.Record{}, err
	}
	return *rec, nil
}

// Set stores value under key and reports whether it changed.
func (s *Service) Set(ctx context.Context, key domain.Key, value string) (domain.Record, bool, error) {
	if !key.IsValid() {
		return domain.Record{}, false, unknownKey(key)
	}
	normalized, err := domain.Normalize(key, value)
	if err != nil {
		return domain.Record{}, false, apierrors.NewValidationError(err)
	}

	s.setMu.Lock()
	current, err := s.Get(ctx, key)
	if err != nil {
		s.setMu.Unlock()
		return domain.Record{}, false, err
	}
	if current.Value == normalized {
		s.setMu.Unlock()
		return current, false, nil
	}
	next := current.WithValue(normalized, s.now())
	if err := s.store.Save(ctx, next); err != nil {
		s.setMu.Unlock()
		return domain.Record{}, false, err
	}
	s.setMu.Unlock()

	for _, fn := range s.snapshot(key) {
		fn(ctx, next)
	}
	return next, true, nil
}

// Subscribe registers fn for changes of key. The returned function removes it.
func (s *Service) Subscribe(key domain.Key, fn ports.Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.listeners[key]
			for i, sub := range subs {
				if sub.id == id {
					s.listeners[key] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Service) snapshot(key domain.Key) []ports.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.listeners[key]
	out := make([]ports.Listener, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.fn)
	}
	return out
}

func unknownKey(key domain.Key) error {
	return apierrors.NewClientError(apierrors.KindMalformedRequest, "unknown selection key "+string(key), domain.ErrUnknownKey)
}

var _ ports.Service = (*Service)(nil)
