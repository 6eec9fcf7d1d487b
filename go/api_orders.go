package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	portalapp "github.com/Apurer/vaccine-portal/internal/domains/portal/application"
	portalports "github.com/Apurer/vaccine-portal/internal/domains/portal/ports"
)

const actionSortOrders = "Error sorting orders"

// OrdersAPI exposes the region orders screen.
type OrdersAPI struct {
	screen portalports.OrdersScreen
}

func NewOrdersAPI(screen portalports.OrdersScreen) OrdersAPI {
	return OrdersAPI{screen: screen}
}

type createOrderRequest struct {
	VaccineQuantity      int    `json:"vaccineQuantity"`
	ExpectedDeliveryTime string `json:"expectedDeliveryTime"`
}

type sortRequest struct {
	Field string `json:"field" binding:"required"`
}

type statusFilterRequest struct {
	Status string `json:"status"`
}

type orderBody struct {
	ID                   int64  `json:"id"`
	Region               string `json:"region"`
	VaccineQuantity      int    `json:"vaccineQuantity"`
	FulfilledQuantity    int    `json:"fulfilledQuantity"`
	ExpectedDeliveryTime string `json:"expectedDeliveryTime"`
	Status               string `json:"status"`
}

type orderMutationResponse struct {
	Order orderBody            `json:"order"`
	View  portalapp.OrdersView `json:"view"`
}

func toOrderBody(o *orderdomain.Order) orderBody {
	return orderBody{
		ID:                   o.ID,
		Region:               string(o.Region),
		VaccineQuantity:      o.VaccineQuantity,
		FulfilledQuantity:    o.FulfilledQuantity,
		ExpectedDeliveryTime: o.DeliveryDate(),
		Status:               string(o.Status),
	}
}

// Get /portal/orders
func (api *OrdersAPI) GetOrders(c *gin.Context) {
	view, err := api.screen.Open(c.Request.Context())
	if err != nil {
		respondFailure(c, portalapp.ActionFetchOrders, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get /portal/orders/all
func (api *OrdersAPI) GetAllOrders(c *gin.Context) {
	c.JSON(http.StatusOK, api.screen.AllOrders(c.Request.Context()))
}

// Post /portal/orders
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	var payload createOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.screen.CreateOrder(c.Request.Context(), payload.VaccineQuantity, payload.ExpectedDeliveryTime)
	if err != nil {
		respondFailure(c, portalapp.ActionCreateOrder, err)
		return
	}
	c.JSON(http.StatusCreated, orderMutationResponse{Order: toOrderBody(created), View: api.screen.View()})
}

// Post /portal/orders/sort
func (api *OrdersAPI) SortOrders(c *gin.Context) {
	var payload sortRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.screen.ToggleSort(payload.Field)
	if err != nil {
		respondFailure(c, actionSortOrders, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Put /portal/orders/filter
func (api *OrdersAPI) FilterOrders(c *gin.Context) {
	var payload statusFilterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	view, err := api.screen.SetStatusFilter(payload.Status)
	if err != nil {
		respondFailure(c, actionSortOrders, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Post /portal/orders/retry
// A failed fetch is part of the returned view, so it still answers 200.
func (api *OrdersAPI) RetryOrders(c *gin.Context) {
	view, _ := api.screen.Retry(c.Request.Context())
	c.JSON(http.StatusOK, view)
}

// Post /portal/orders/:orderId/priority
func (api *OrdersAPI) MakePriority(c *gin.Context) {
	api.transition(c, orderdomain.StatusPriority)
}

// Post /portal/orders/:orderId/cancel
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	api.transition(c, orderdomain.StatusCancelled)
}

func (api *OrdersAPI) transition(c *gin.Context, target orderdomain.Status) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	updated, err := api.screen.Transition(c.Request.Context(), id, target)
	if err != nil {
		respondFailure(c, portalapp.ActionUpdateOrder, err)
		return
	}
	c.JSON(http.StatusOK, orderMutationResponse{Order: toOrderBody(updated), View: api.screen.View()})
}
