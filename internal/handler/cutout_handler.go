package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/blobstore"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// CutoutHandler handles HTTP requests for cutout images
type CutoutHandler struct {
	cutoutService *service.CutoutService
	blobs         *blobstore.Store
}

// NewCutoutHandler creates a new cutout handler
func NewCutoutHandler(cutoutService *service.CutoutService, blobs *blobstore.Store) *CutoutHandler {
	return &CutoutHandler{
		cutoutService: cutoutService,
		blobs:         blobs,
	}
}

// Get handles GET /api/v1/cutouts/:pointId?ext=png|fits|hdf5&download=1
func (h *CutoutHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "pointId")
	if !ok {
		return
	}
	format := models.CutoutFormat(c.DefaultQuery("ext", string(models.CutoutPNG)))

	if c.Query("download") == "1" {
		file, err := h.cutoutService.Download(c.Request.Context(), id, format)
		if err != nil {
			respondError(c, err)
			return
		}
		sendAttachment(c, file)
		return
	}

	cutout, err := h.cutoutService.FetchCutoutImage(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	if cutout.NotFound {
		response.NotFound(c, "Cutout not found")
		return
	}
	c.Data(http.StatusOK, cutout.ContentType, cutout.Data)
}

// Blob handles GET /api/v1/blobs/:token, the image shown in an open tooltip
func (h *CutoutHandler) Blob(c *gin.Context) {
	blob, ok := h.blobs.Get(c.Param("token"))
	if !ok {
		response.NotFound(c, "Image no longer available")
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, blob.ContentType, blob.Data)
}
