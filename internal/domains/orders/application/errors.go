package application

import (
	"errors"

	"github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	apierrors "github.com/Apurer/vaccine-portal/internal/shared/errors"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnknownRegion) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidDeliveryDateFormat) ||
		errors.Is(err, domain.ErrDeliveryDateInPast) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return apierrors.NewValidationError(err)
	}
	return err
}
