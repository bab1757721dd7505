package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/service"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// AuthHandler serves the login link state
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Link handles GET /api/v1/auth/link
func (h *AuthHandler) Link(c *gin.Context) {
	access, _ := c.Cookie(service.AccessTokenCookie)
	refresh, _ := c.Cookie(service.RefreshTokenCookie)
	response.Success(c, h.authService.LoginLink(access, refresh))
}
