package application

import (
	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	"github.com/Apurer/vaccine-portal/internal/views"
)

// OrderFields are the sortable order columns, in display order.
var OrderFields = views.NewSchema(
	views.NumberField("id", "ID", func(o orderdomain.Order) int64 { return o.ID }),
	views.StringField("region", "Region", func(o orderdomain.Order) string { return string(o.Region) }),
	views.NumberField("vaccineQuantity", "Vaccine Quantity", func(o orderdomain.Order) int { return o.VaccineQuantity }),
	views.StringField("expectedDeliveryTime", "Expected Delivery", orderdomain.Order.DeliveryDate),
	views.StringField("status", "Status", func(o orderdomain.Order) string { return string(o.Status) }),
)

// CapacityFields are the sortable capacity columns, in display order.
var CapacityFields = views.NewSchema(
	views.NumberField("id", "ID", func(c capdomain.Capacity) int64 { return c.ID }),
	views.StringField("producerName", "Producer Name", func(c capdomain.Capacity) string { return string(c.ProducerName) }),
	views.NumberField("vaccinesQuantity", "Total Vaccines", func(c capdomain.Capacity) int { return c.VaccinesQuantity }),
	views.NumberField("excessVaccines", "Remaining Vaccines", func(c capdomain.Capacity) int { return c.ExcessVaccines }),
	views.StringField("productionDeadline", "Production Deadline", capdomain.Capacity.Deadline),
)

// Column describes one table header.
type Column struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

func columns[T any](schema views.Schema[T]) []Column {
	fields := schema.Fields()
	out := make([]Column, 0, len(fields))
	for _, f := range fields {
		out = append(out, Column{Field: f.Name, Label: f.Label})
	}
	return out
}
