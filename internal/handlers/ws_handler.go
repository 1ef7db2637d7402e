package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kindred/internal/logger"
	"kindred/internal/middleware"
	"kindred/internal/realtime"
)

// WSHandler upgrades authenticated connections into realtime clients.
type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. Origin checking is delegated to
// the CORS layer; the token is the actual gate.
func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles the WebSocket handshake. Browsers cannot set headers on
// WebSocket requests, so the JWT arrives as a query parameter.
// @Summary     Open a realtime connection
// @Description Upgrade to WebSocket for family channel events
// @Tags        realtime
// @Param       token query string true "JWT access token"
// @Success     101 "Switching protocols"
// @Failure     401 {object} ErrorResponse "Invalid token"
// @Router      /ws [get]
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	claims, err := middleware.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Warnw("websocket upgrade failed", "error", err, "user_id", claims.UserID)
		return
	}

	client := realtime.NewClient(h.hub, conn, claims.UserID)
	h.hub.Register(client)

	logger.Get().Debugw("websocket connected", "client_id", client.ID, "user_id", claims.UserID)
	client.Run()
}
