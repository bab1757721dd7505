package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/internal/sky"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// SourceHandler handles HTTP requests for sources
type SourceHandler struct {
	sourceService *service.SourceService
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(sourceService *service.SourceService) *SourceHandler {
	return &SourceHandler{
		sourceService: sourceService,
	}
}

// List handles GET /api/v1/sources
func (h *SourceHandler) List(c *gin.Context) {
	sources, err := h.sourceService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, sources)
}

// Summary handles GET /api/v1/sources/:id/summary
func (h *SourceHandler) Summary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.sourceService.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, summary)
}

// Nearby handles GET /api/v1/sources/:id/nearby
func (h *SourceHandler) Nearby(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", strconv.FormatFloat(sky.DefaultConeRadius, 'f', -1, 64)), 64)
	if err != nil || radius <= 0 {
		response.BadRequest(c, "Invalid radius parameter")
		return
	}

	nearby, err := h.sourceService.Nearby(c.Request.Context(), id, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, nearby)
}

// SkyView handles GET /api/v1/sources/:id/skyview
func (h *SourceHandler) SkyView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	view, err := h.sourceService.SkyView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// Cone handles GET /api/v1/search/cone
func (h *SourceHandler) Cone(c *gin.Context) {
	// zero is a valid coordinate, so presence is checked by hand
	if c.Query("ra") == "" || c.Query("dec") == "" {
		response.BadRequest(c, "ra and dec are required")
		return
	}
	var filter models.ConeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid cone search parameters: "+err.Error())
		return
	}
	hits, err := h.sourceService.Cone(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, hits)
}

// Feed handles GET /api/v1/feed
func (h *SourceHandler) Feed(c *gin.Context) {
	var filter models.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid feed parameters: "+err.Error())
		return
	}
	feed, err := h.sourceService.Feed(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, feed)
}
