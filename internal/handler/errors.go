package handler

import (
	"errors"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/catalog"
	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// respondError maps service and catalog errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var svcErr *catalog.ServiceError
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.As(err, &svcErr):
		log.Printf("[Handler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.BadGateway(c, err.Error())
	default:
		log.Printf("[Handler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c, err.Error())
	}
}

// parseID reads a non-negative integer path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
