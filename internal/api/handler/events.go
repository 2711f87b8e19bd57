package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mlstage/mlstage/internal/api/middleware"
	"github.com/mlstage/mlstage/internal/store"
)

// EventsHandler streams store change events over a WebSocket.
type EventsHandler struct {
	store    *store.Store
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new events handler. Origin checks defer to
// the CORS configuration.
func NewEventsHandler(st *store.Store, cors middleware.CORSConfig) *EventsHandler {
	return &EventsHandler{
		store: st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return middleware.IsOriginAllowed(origin, cors)
			},
		},
	}
}

// Stream handles GET /api/v1/events. Each store mutation is written as
// one JSON message until the client disconnects.
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	events, cancel := h.store.Subscribe()
	defer cancel()

	// Drain client frames so close messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
