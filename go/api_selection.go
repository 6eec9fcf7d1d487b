package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	capdomain "github.com/Apurer/vaccine-portal/internal/domains/capacities/domain"
	orderdomain "github.com/Apurer/vaccine-portal/internal/domains/orders/domain"
	seldomain "github.com/Apurer/vaccine-portal/internal/domains/selection/domain"
	selports "github.com/Apurer/vaccine-portal/internal/domains/selection/ports"
)

const actionSaveSelection = "Error saving selection"

// SelectionAPI exposes the persisted region and producer selections.
type SelectionAPI struct {
	service selports.Service
}

func NewSelectionAPI(service selports.Service) SelectionAPI {
	return SelectionAPI{service: service}
}

type selectionResponse struct {
	Region          string   `json:"region"`
	Producer        string   `json:"producer"`
	RecentRegions   []string `json:"recentRegions"`
	RecentProducers []string `json:"recentProducers"`
}

type selectionUpdate struct {
	Value string `json:"value"`
}

type catalogStatus struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type catalogResponse struct {
	Regions   []string        `json:"regions"`
	Producers []string        `json:"producers"`
	Statuses  []catalogStatus `json:"statuses"`
}

// Get /portal/selection
func (api *SelectionAPI) GetSelection(c *gin.Context) {
	resp, err := api.snapshot(c)
	if err != nil {
		respondFailure(c, actionSaveSelection, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Put /portal/selection/region
func (api *SelectionAPI) SetRegion(c *gin.Context) {
	api.set(c, seldomain.KeyRegion)
}

// Put /portal/selection/producer
func (api *SelectionAPI) SetProducer(c *gin.Context) {
	api.set(c, seldomain.KeyProducer)
}

func (api *SelectionAPI) set(c *gin.Context, key seldomain.Key) {
	var payload selectionUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if _, _, err := api.service.Set(c.Request.Context(), key, payload.Value); err != nil {
		respondFailure(c, actionSaveSelection, err)
		return
	}
	resp, err := api.snapshot(c)
	if err != nil {
		respondFailure(c, actionSaveSelection, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (api *SelectionAPI) snapshot(c *gin.Context) (selectionResponse, error) {
	ctx := c.Request.Context()
	region, err := api.service.Get(ctx, seldomain.KeyRegion)
	if err != nil {
		return selectionResponse{}, err
	}
	producer, err := api.service.Get(ctx, seldomain.KeyProducer)
	if err != nil {
		return selectionResponse{}, err
	}
	return selectionResponse{
		Region:          region.Value,
		Producer:        producer.Value,
		RecentRegions:   nonNil(region.Recent),
		RecentProducers: nonNil(producer.Recent),
	}, nil
}

// Get /portal/catalog
func (api *SelectionAPI) GetCatalog(c *gin.Context) {
	resp := catalogResponse{}
	for _, r := range orderdomain.Regions {
		resp.Regions = append(resp.Regions, string(r))
	}
	for _, p := range capdomain.Producers {
		resp.Producers = append(resp.Producers, string(p))
	}
	for _, s := range orderdomain.Statuses {
		resp.Statuses = append(resp.Statuses, catalogStatus{Value: string(s), Label: s.Label()})
	}
	c.JSON(http.StatusOK, resp)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
