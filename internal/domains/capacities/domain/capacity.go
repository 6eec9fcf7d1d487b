package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"

	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
)

var (
	ErrUnknownProducer  = errors.New("producer is not one of the registered producers")
	ErrInvalidQuantity  = errors.New("vaccines quantity must be positive")
	ErrMissingFields    = errors.New("Please fill all the fields.")
	ErrInvalidDeadline  = errors.New("Production Deadline must be in YYYY-MM-DD format")
	ErrExcessOutOfRange = errors.New("excess vaccines must be between zero and the pledged quantity")
)

// Producer is a manufacturer pledging production capacity.
type Producer string

// Producers are the manufacturers known to the distribution system.
var Producers = []Producer{
	"Pfizer",
	"Moderna",
	"AstraZeneca",
	"Johnson & Johnson",
	"Novavax",
}

func (p Producer) IsValid() bool {
	for _, known := range Producers {
		if known == p {
			return true
		}
	}
	return false
}

// ParseProducer resolves raw case-insensitively against Producers.
func ParseProducer(raw string) (Producer, error) {
	raw = strings.TrimSpace(raw)
	for _, known := range Producers {
		if strings.EqualFold(string(known), raw) {
			return known, nil
		}
	}
	return "", ErrUnknownProducer
}

// Capacity is a production run pledged by a producer. ExcessVaccines is computed by the
// order service and only ever read here.
type Capacity struct {
	ID                 int64
	ProducerName       Producer
	VaccinesQuantity   int
	ExcessVaccines     int
	ProductionDeadline time.Time
}

// Deadline renders the production deadline as YYYY-MM-DD.
func (c Capacity) Deadline() string {
	return c.ProductionDeadline.Format(orderdomain.DateLayout)
}

// Allocated is the part of the pledge already assigned to orders.
func (c Capacity) Allocated() int {
	return c.VaccinesQuantity - c.ExcessVaccines
}

// Validate checks the invariant the order service maintains on excess.
func (c Capacity) Validate() error {
	if c.ExcessVaccines < 0 || c.ExcessVaccines > c.VaccinesQuantity {
		return ErrExcessOutOfRange
	}
	return nil
}

// NewCapacityRequest is a validated capacity registration.
type NewCapacityRequest struct {
	ProducerName       Producer
	VaccinesQuantity   int
	ProductionDeadline time.Time
}

// NewCapacity validates the registration form. quantity and deadline are the raw form
// values so that empty fields can be told apart from bad ones.
func NewCapacity(producer Producer, quantity string, deadline string) (*NewCapacityRequest, error) {
	quantity = strings.TrimSpace(quantity)
	deadline = strings.TrimSpace(deadline)
	if quantity == "" || deadline == "" {
		return nil, ErrMissingFields
	}
	if !producer.IsValid() {
		return nil, ErrUnknownProducer
	}
	amount, err := strconv.Atoi(quantity)
	if err != nil || amount <= 0 {
		return nil, ErrInvalidQuantity
	}
	date, err := orderdomain.ParseCalendarDate(deadline, time.UTC)
	if err != nil {
		return nil, ErrInvalidDeadline
	}
	return &NewCapacityRequest{
		ProducerName:       producer,
		VaccinesQuantity:   amount,
		ProductionDeadline: date,
	}, nil
}
