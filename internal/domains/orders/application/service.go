package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/domains/orders/ports"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
	"github.com/Apurer/vaccine-portal/internal/shared/invalidation"
)

// Service is the order lifecycle model: it guards the status state machine and creation
// rules, and marks order views stale after every confirmed mutation instead of patching them.
type Service struct {
	backend   ports.Backend
	submitter ports.Submitter
	notifier  invalidation.Notifier
	now       func() time.Time
}

type Option func(*Service)

// WithSubmitter routes order creation through s instead of the backend client.
func WithSubmitter(s ports.Submitter) Option {
	return func(svc *Service) {
		if s != nil {
			svc.submitter = s
		}
	}
}

// WithClock overrides the time source used for delivery date validation.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func NewService(backend ports.Backend, notifier invalidation.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = invalidation.Noop
	}
	s := &Service{backend: backend, submitter: backend, notifier: notifier, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.backend.ListAllOrders(ctx)
}

func (s *Service) ListOrdersByRegion(ctx context.Context, region domain.Region) ([]domain.Order, error) {
	if region == "" {
		return nil, apierrors.NewClientError(apierrors.KindSelectionUnset, "region is not selected", nil)
	}
	if !region.IsValid() {
		return nil, mapError(domain.ErrUnknownRegion)
	}
	return s.backend.ListOrdersByRegion(ctx, region)
}

func (s *Service) ListOrdersByPriority(ctx context.Context) ([]domain.Order, error) {
	return s.backend.ListOrdersByPriority(ctx)
}

func (s *Service) ListOrdersByPendingStatus(ctx context.Context) ([]domain.Order, error) {
	return s.backend.ListOrdersByPendingStatus(ctx)
}

// CreateOrder validates the form locally and only then submits it.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	req, err := domain.NewOrder(input.Region, input.VaccineQuantity, input.ExpectedDeliveryTime, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	created, err := s.submitter.CreateOrder(ctx, *req)
	if err != nil {
		return nil, err
	}
	s.notifier.MarkStale(ctx, invalidation.TopicOrders, invalidation.TopicCapacities)
	return created, nil
}

// RequestTransition asks the order service to move order to target. order is the snapshot
// the caller acted on; disallowed requests are refused without a network call.
func (s *Service) RequestTransition(ctx context.Context, order domain.Order, target domain.Status) (*domain.Order, error) {
	if order.ID <= 0 {
		return nil, apierrors.NewClientError(apierrors.KindMalformedRequest, "order id is required", nil)
	}
	if !target.IsValid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	if !domain.CanTransition(order.Status, target) {
		msg := fmt.Sprintf("order %d cannot move from %s to %s", order.ID, order.Status.Label(), target.Label())
		return nil, apierrors.NewClientError(apierrors.KindInvalidTransition, msg, apierrors.ErrInvalidTransition)
	}
	updated, err := s.backend.SetOrderStatus(ctx, order.ID, target)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.New("order service returned no order")
	}
	// Priority and cancellation change allocation, so capacity excess is stale too.
	s.notifier.MarkStale(ctx, invalidation.TopicOrders, invalidation.TopicCapacities)
	return updated, nil
}

// MakePriority is the producer-side "make priority" action.
func (s *Service) MakePriority(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return s.RequestTransition(ctx, order, domain.StatusPriority)
}

// Cancel is the region-side "cancel" action.
func (s *Service) Cancel(ctx context.Context, order domain.Order) (*domain.Order, error) {
	return s.RequestTransition(ctx, order, domain.StatusCancelled)
}

// AllowedTransitions drives which affordances the UI enables for order.
func (s *Service) AllowedTransitions(order domain.Order) []domain.Status {
	return domain.AllowedTransitions(order.Status)
}

var _ ports.Service = (*Service)(nil)
