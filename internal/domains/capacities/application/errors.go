package application

import (
	"errors"

	"github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnknownProducer) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrMissingFields) ||
		errors.Is(err, domain.ErrInvalidDeadline) {
		return apierrors.NewValidationError(err)
	}
	return err
}
