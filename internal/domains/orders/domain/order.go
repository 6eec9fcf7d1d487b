package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the calendar-date format exchanged with the order service.
const DateLayout = "2006-01-02"

var (
	ErrUnknownRegion             = errors.New("region is not one of the supported regions")
	ErrInvalidQuantity           = errors.New("vaccine quantity must be greater than zero")
	ErrInvalidDeliveryDateFormat = errors.New("Expected Delivery Time must be in YYYY-MM-DD format")
	ErrDeliveryDateInPast        = errors.New("Expected Delivery Time cannot be in the past")
)

var calendarDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Order is a vaccine order placed by a region.
type Order struct {
	ID                   int64
	Region               Region
	VaccineQuantity      int
	FulfilledQuantity    int
	ExpectedDeliveryTime time.Time
	Status               Status
}

// DeliveryDate renders the expected delivery date as YYYY-MM-DD.
func (o Order) DeliveryDate() string {
	return o.ExpectedDeliveryTime.Format(DateLayout)
}

// NewOrderRequest is a validated order creation request.
type NewOrderRequest struct {
	Region               Region
	VaccineQuantity      int
	ExpectedDeliveryTime time.Time
}

// NewOrder validates the creation form against the calendar day of now.
func NewOrder(region Region, vaccineQuantity int, expectedDeliveryTime string, now time.Time) (*NewOrderRequest, error) {
	if !region.IsValid() {
		return nil, ErrUnknownRegion
	}
	if vaccineQuantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	date, err := ValidateDeliveryDate(expectedDeliveryTime, now)
	if err != nil {
		return nil, err
	}
	return &NewOrderRequest{
		Region:               region,
		VaccineQuantity:      vaccineQuantity,
		ExpectedDeliveryTime: date,
	}, nil
}

// ValidateDeliveryDate checks the strict YYYY-MM-DD pattern and rejects days before
// the local calendar day of now. Time of day is ignored.
func ValidateDeliveryDate(value string, now time.Time) (time.Time, error) {
	date, err := ParseCalendarDate(value, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if date.Before(StartOfDay(now)) {
		return time.Time{}, ErrDeliveryDateInPast
	}
	return date, nil
}

// ParseCalendarDate parses a strict YYYY-MM-DD date at midnight in loc.
func ParseCalendarDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !calendarDatePattern.MatchString(value) {
		return time.Time{}, ErrInvalidDeliveryDateFormat
	}
	if loc == nil {
		loc = time.Local
	}
	date, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDeliveryDateFormat
	}
	return date, nil
}

// StartOfDay truncates t to local midnight of its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
