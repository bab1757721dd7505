package handler

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/lightcurve-viewer-go/internal/session"
	"github.com/jengzang/lightcurve-viewer-go/pkg/response"
)

// SessionHandler upgrades plot sessions to websockets
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{
		manager: manager,
	}
}

// Connect handles GET /api/v1/lightcurves/:id/session
func (h *SessionHandler) Connect(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	hide, err := strconv.ParseBool(c.DefaultQuery("hideFlagged", "false"))
	if err != nil {
		response.BadRequest(c, "Invalid hideFlagged parameter")
		return
	}

	conn, err := session.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[SessionHandler] upgrade failed: %v", err)
		return
	}
	_ = h.manager.Serve(c.Request.Context(), conn, id, hide)
}

// Stats handles GET /api/v1/sessions
func (h *SessionHandler) Stats(c *gin.Context) {
	response.Success(c, gin.H{"open_sessions": h.manager.Len()})
}
