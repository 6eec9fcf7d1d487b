package portalserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	portalapp "github.com/Apurer/vaccine-portal/internal/domains/portal/application"
	portalports "github.com/Apurer/vaccine-portal/internal/domains/portal/ports"
)

const actionSortDashboard = "Error sorting dashboard"

// ProducerAPI exposes the producer dashboard.
type ProducerAPI struct {
	dashboard portalports.ProducerDashboard
}

func NewProducerAPI(dashboard portalports.ProducerDashboard) ProducerAPI {
	return ProducerAPI{dashboard: dashboard}
}

// registerCapacityRequest mirrors the registration form. The quantity may arrive as a
// number or as the raw text of the input.
type registerCapacityRequest struct {
	VaccinesQuantity   any    `json:"vaccinesQuantity"`
	ProductionDeadline string `json:"productionDeadline"`
}

type hideEmptyRequest struct {
	HideEmpty bool `json:"hideEmpty"`
}

type capacityBody struct {
	ID                 int64  `json:"id"`
	ProducerName       string `json:"producerName"`
	VaccinesQuantity   int    `json:"vaccinesQuantity"`
	ExcessVaccines     int    `json:"excessVaccines"`
	ProductionDeadline string `json:"productionDeadline"`
}

type capacityMutationResponse struct {
	Capacity capacityBody            `json:"capacity"`
	View     portalapp.DashboardView `json:"view"`
}

type dashboardOrderResponse struct {
	Order orderBody               `json:"order"`
	View  portalapp.DashboardView `json:"view"`
}

func toCapacityBody(c *capdomain.Capacity) capacityBody {
	return capacityBody{
		ID:                 c.ID,
		ProducerName:       string(c.ProducerName),
		VaccinesQuantity:   c.VaccinesQuantity,
		ExcessVaccines:     c.ExcessVaccines,
		ProductionDeadline: c.Deadline(),
	}
}

// formValue renders a loosely typed form field as its text.
func formValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

// Get /portal/producer/dashboard
func (api *ProducerAPI) GetDashboard(c *gin.Context) {
	view, err := api.dashboard.Open(c.Request.Context())
	if err != nil {
		respondFailure(c, portalapp.ActionLoadOrders, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /portal/producer/capacities
func (api *ProducerAPI) RegisterCapacity(c *gin.Context) {
	var payload registerCapacityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.dashboard.RegisterCapacity(c.Request.Context(), formValue(payload.VaccinesQuantity), payload.ProductionDeadline)
	if err != nil {
		respondFailure(c, portalapp.ActionRegister, err)
		return
	}
	c.JSON(http.StatusCreated, capacityMutationResponse{Capacity: toCapacityBody(created), View: api.dashboard.View()})
}

// Post /portal/producer/orders/sort
func (api *ProducerAPI) SortOrders(c *gin.Context) {
	var payload sortRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.dashboard.ToggleOrderSort(payload.Field)
	if err != nil {
		respondFailure(c, actionSortDashboard, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /portal/producer/capacities/sort
func (api *ProducerAPI) SortCapacities(c *gin.Context) {
	var payload sortRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.dashboard.ToggleCapacitySort(payload.Field)
	if err != nil {
		respondFailure(c, actionSortDashboard, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Put /portal/producer/capacities/filter
func (api *ProducerAPI) FilterCapacities(c *gin.Context) {
	var payload hideEmptyRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, api.dashboard.SetHideEmpty(payload.HideEmpty))
}

// Post /portal/producer/retry
func (api *ProducerAPI) RetryDashboard(c *gin.Context) {
	view, _ := api.dashboard.Retry(c.Request.Context())
	c.JSON(http.StatusOK, view)
}

// Post /portal/producer/orders/:orderId/priority
func (api *ProducerAPI) MakePriority(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	updated, err := api.dashboard.MakePriority(c.Request.Context(), id)
	if err != nil {
		respondFailure(c, portalapp.ActionUpdateOrder, err)
		return
	}
	c.JSON(http.StatusOK, dashboardOrderResponse{Order: toOrderBody(updated), View: api.dashboard.View()})
}
