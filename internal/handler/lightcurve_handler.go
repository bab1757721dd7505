package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/render"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// LightcurveHandler handles HTTP requests for light curves
type LightcurveHandler struct {
	lightcurveService *service.LightcurveService
}

// NewLightcurveHandler creates a new light-curve handler
func NewLightcurveHandler(lightcurveService *service.LightcurveService) *LightcurveHandler {
	return &LightcurveHandler{
		lightcurveService: lightcurveService,
	}
}

// Get handles GET /api/v1/lightcurves/:id
func (h *LightcurveHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	data, err := h.lightcurveService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, data)
}

// Badges handles GET /api/v1/lightcurves/:id/badges
func (h *LightcurveHandler) Badges(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	badge, err := h.lightcurveService.Badges(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, badge)
}

// Variability handles GET /api/v1/lightcurves/:id/variability
func (h *LightcurveHandler) Variability(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.lightcurveService.Variability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, summary)
}

// Table handles GET /api/v1/lightcurves/:id/table
func (h *LightcurveHandler) Table(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rows, err := h.lightcurveService.Table(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, rows)
}

// Series handles GET /api/v1/lightcurves/:id/series?hideFlagged=
func (h *LightcurveHandler) Series(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	hide, ok := parseHideFlagged(c)
	if !ok {
		return
	}
	series, err := h.lightcurveService.Series(c.Request.Context(), id, hide)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, series)
}

// Plot handles GET /api/v1/lightcurves/:id/plot.png?hideFlagged=&width=&height=
func (h *LightcurveHandler) Plot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	hide, ok := parseHideFlagged(c)
	if !ok {
		return
	}
	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))
	if width < 0 || width > 4000 || height < 0 || height > 4000 {
		response.BadRequest(c, "Invalid plot size")
		return
	}

	var buf bytes.Buffer
	err := h.lightcurveService.RenderPNG(c.Request.Context(), id, hide, width, height, &buf)
	if errors.Is(err, render.ErrNothingToPlot) {
		response.NotFound(c, "No observations to plot")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Download handles GET /api/v1/lightcurves/:id/download?ext=csv|hdf5
func (h *LightcurveHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	format := models.DataFormat(c.DefaultQuery("ext", string(models.DataCSV)))

	file, err := h.lightcurveService.Download(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, file)
}

func parseHideFlagged(c *gin.Context) (bool, bool) {
	raw := c.DefaultQuery("hideFlagged", "false")
	hide, err := strconv.ParseBool(raw)
	if err != nil {
		response.BadRequest(c, "Invalid hideFlagged parameter")
		return false, false
	}
	return hide, true
}

func sendAttachment(c *gin.Context, file *models.DataFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
