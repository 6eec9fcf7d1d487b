package backend

import (
	"fmt"

	openapi_types "github.com/oapi-codegen/runtime/types"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

type orderPayload struct {
	ID                   int64               `json:"id"`
	Region               string              `json:"region"`
	VaccineQuantity      int                 `json:"vaccineQuantity"`
	FulfilledQuantity    int                 `json:"fulfilledQuantity"`
	ExpectedDeliveryTime *openapi_types.Date `json:"expectedDeliveryTime"`
	Status               string              `json:"status"`
}

func (p orderPayload) toDomain() (orderdomain.Order, error) {
	status, err := orderdomain.ParseStatus(p.Status)
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("order %d: unexpected status %q", p.ID, p.Status)
	}
	order := orderdomain.Order{
		ID:                p.ID,
		Region:            orderdomain.Region(p.Region),
		VaccineQuantity:   p.VaccineQuantity,
		FulfilledQuantity: p.FulfilledQuantity,
		Status:            status,
	}
	if p.ExpectedDeliveryTime != nil {
		order.ExpectedDeliveryTime = p.ExpectedDeliveryTime.Time
	}
	return order, nil
}

type createOrderBody struct {
	Region               string             `json:"region"`
	VaccineQuantity      int                `json:"vaccineQuantity"`
	ExpectedDeliveryTime openapi_types.Date `json:"expectedDeliveryTime"`
}

func newCreateOrderBody(req orderdomain.NewOrderRequest) createOrderBody {
	return createOrderBody{
		Region:               string(req.Region),
		VaccineQuantity:      req.VaccineQuantity,
		ExpectedDeliveryTime: openapi_types.Date{Time: req.ExpectedDeliveryTime},
	}
}

type capacityPayload struct {
	ID                 int64               `json:"id"`
	ProducerName       string              `json:"producerName"`
	VaccinesQuantity   int                 `json:"vaccinesQuantity"`
	ExcessVaccines     int                 `json:"excessVaccines"`
	ProductionDeadline *openapi_types.Date `json:"productionDeadline"`
}

func (p capacityPayload) toDomain() (capdomain.Capacity, error) {
	capacity := capdomain.Capacity{
		ID:               p.ID,
		ProducerName:     capdomain.Producer(p.ProducerName),
		VaccinesQuantity: p.VaccinesQuantity,
		ExcessVaccines:   p.ExcessVaccines,
	}
	if p.ProductionDeadline != nil {
		capacity.ProductionDeadline = p.ProductionDeadline.Time
	}
	if err := capacity.Validate(); err != nil {
		return capdomain.Capacity{}, fmt.Errorf("capacity %d: %w", p.ID, err)
	}
	return capacity, nil
}

type createCapacityBody struct {
	ProducerName       string             `json:"producerName"`
	VaccinesQuantity   int                `json:"vaccinesQuantity"`
	ProductionDeadline openapi_types.Date `json:"productionDeadline"`
}

func newCreateCapacityBody(req capdomain.NewCapacityRequest) createCapacityBody {
	return createCapacityBody{
		ProducerName:       string(req.ProducerName),
		VaccinesQuantity:   req.VaccinesQuantity,
		ProductionDeadline: openapi_types.Date{Time: req.ProductionDeadline},
	}
}
