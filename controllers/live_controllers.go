package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-console/hub"
	"github.com/yeremiapane/restaurant-console/middlewares"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/store"
	"github.com/yeremiapane/restaurant-console/utils"
)

type LiveController struct {
	client   *services.Client
	registry *store.Registry
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts WebSocket handshakes from allowedOrigin only; an empty value
// allows any origin.
func NewLiveController(client *services.Client, registry *store.Registry, h *hub.Hub, allowedOrigin string) *LiveController {
	return &LiveController{
		client:   client,
		registry: registry,
		hub:      h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// WSHandler streams the session's store events (reservations_refresh) to a table-occupancy view.
func (lc *LiveController) WSHandler(c *gin.Context) {
	session := middlewares.SessionFrom(c)

	// Pastikan store sesi ada supaya event-nya diteruskan ke hub
	sessionStore(c, lc.client, lc.registry)

	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	lc.hub.Register(ws, session.Token)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	lc.hub.Unregister(ws)
}
