package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of the portal surface.
type ApiHandleFunctions struct {
	SelectionAPI SelectionAPI
	OrdersAPI    OrdersAPI
	ProducerAPI  ProducerAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, middleware...)
}

// NewRouterWithGinEngine adds the portal routes to an existing engine. Middleware is
// installed before the routes so it wraps every handler.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router.Use(middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"GetSelection", http.MethodGet, "/portal/selection", handleFunctions.SelectionAPI.GetSelection},
		{"SetRegion", http.MethodPut, "/portal/selection/region", handleFunctions.SelectionAPI.SetRegion},
		{"SetProducer", http.MethodPut, "/portal/selection/producer", handleFunctions.SelectionAPI.SetProducer},
		{"GetCatalog", http.MethodGet, "/portal/catalog", handleFunctions.SelectionAPI.GetCatalog},

		{"GetOrders", http.MethodGet, "/portal/orders", handleFunctions.OrdersAPI.GetOrders},
		{"CreateOrder", http.MethodPost, "/portal/orders", handleFunctions.OrdersAPI.CreateOrder},
		{"GetAllOrders", http.MethodGet, "/portal/orders/all", handleFunctions.OrdersAPI.GetAllOrders},
		{"SortOrders", http.MethodPost, "/portal/orders/sort", handleFunctions.OrdersAPI.SortOrders},
		{"FilterOrders", http.MethodPut, "/portal/orders/filter", handleFunctions.OrdersAPI.FilterOrders},
		{"RetryOrders", http.MethodPost, "/portal/orders/retry", handleFunctions.OrdersAPI.RetryOrders},
		{"MakeOrderPriority", http.MethodPost, "/portal/orders/:orderId/priority", handleFunctions.OrdersAPI.MakePriority},
		{"CancelOrder", http.MethodPost, "/portal/orders/:orderId/cancel", handleFunctions.OrdersAPI.CancelOrder},

		{"GetDashboard", http.MethodGet, "/portal/producer/dashboard", handleFunctions.ProducerAPI.GetDashboard},
		{"RegisterCapacity", http.MethodPost, "/portal/producer/capacities", handleFunctions.ProducerAPI.RegisterCapacity},
		{"SortDashboardOrders", http.MethodPost, "/portal/producer/orders/sort", handleFunctions.ProducerAPI.SortOrders},
		{"SortDashboardCapacities", http.MethodPost, "/portal/producer/capacities/sort", handleFunctions.ProducerAPI.SortCapacities},
		{"FilterDashboardCapacities", http.MethodPut, "/portal/producer/capacities/filter", handleFunctions.ProducerAPI.FilterCapacities},
		{"RetryDashboard", http.MethodPost, "/portal/producer/retry", handleFunctions.ProducerAPI.RetryDashboard},
		{"MakeDashboardOrderPriority", http.MethodPost, "/portal/producer/orders/:orderId/priority", handleFunctions.ProducerAPI.MakePriority},
	}
}
