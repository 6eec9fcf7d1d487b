package application

import (
	"context"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/capacities/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
)

// Service implements capacity use cases.
type Service struct {
	backend   ports.Backend
	submitter ports.Submitter
	notifier  invalidation.Notifier
}

type Option func(*Service)

// WithSubmitter routes registrations through s instead of the backend client.
func WithSubmitter(s ports.Submitter) Option {
	return func(svc *Service) {
		if s != nil {
			svc.submitter = s
		}
	}
}

func NewService(backend ports.Backend, notifier invalidation.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = invalidation.Noop
	}
	s := &Service{backend: backend, submitter: backend, notifier: notifier}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ListCapacitiesByProducer(ctx context.Context, producer domain.Producer) ([]domain.Capacity, error) {
	if producer == "" {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "producer is not selected", nil)
	}
	if !producer.IsValid() {
		return nil, mapError(domain.ErrUnknownProducer)
	}
	return s.backend.ListCapacitiesByProducer(ctx, producer)
}

// RegisterCapacity validates the form locally, submits it, and marks capacity and order
// views stale since new supply can change how pending demand is covered.
func (s *Service) RegisterCapacity(ctx context.Context, input ports.RegisterCapacityInput) (*domain.Capacity, error) {
	if input.Producer == "" {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "producer is not selected", nil)
	}
	req, err := domain.NewCapacity(input.Producer, input.VaccinesQuantity, input.ProductionDeadline)
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.submitter.CreateCapacity(ctx, *req)
	if err != nil {
		return nil, err
	}
	s.notifier.MarkStale(ctx, invalidation.TopicCapacities, invalidation.TopicOrders)
	return created, nil
}

var _ ports.Service = (*Service)(nil)
