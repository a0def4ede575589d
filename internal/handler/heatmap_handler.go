package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/location-heatmap/internal/analysis"
	"github.com/jengzang/location-heatmap/internal/models"
	"github.com/jengzang/location-heatmap/internal/service"
	"github.com/jengzang/location-heatmap/pkg/response"
)

// HeatmapHandler handles HTTP requests for heatmap queries
type HeatmapHandler struct {
	service *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{service: service}
}

// GetHeatmap handles GET and POST /api/v1/heatmap
func (h *HeatmapHandler) GetHeatmap(c *gin.Context) {
	var filter models.HeatmapFilter
	if err := c.ShouldBind(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	data, err := h.service.Heatmap(filter)
	if err != nil {
		var tsErr *analysis.TimestampError
		switch {
		case errors.Is(err, service.ErrInvalidFilter):
			response.Error(c, http.StatusBadRequest, "Invalid filter", err)
		case errors.As(err, &tsErr):
			response.Error(c, http.StatusUnprocessableEntity, "Dataset contains a malformed timestamp", err)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to build heatmap", err)
		}
		return
	}

	response.Success(c, data)
}

// GetDatasetSummary handles GET /api/v1/dataset
func (h *HeatmapHandler) GetDatasetSummary(c *gin.Context) {
	response.Success(c, h.service.Summary())
}

// GetFilterOptions handles GET /api/v1/filters
func (h *HeatmapHandler) GetFilterOptions(c *gin.Context) {
	response.Success(c, h.service.FilterOptions())
}
