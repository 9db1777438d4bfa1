package availability

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const maxReadSize = 512

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler accepts websocket origins from allowedOrigins; an empty list
// accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/players/live", h.Subscribe)
}

// Subscribe streams listing events. Optional ?game= narrows the feed.
func (h *Handler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	s := newSubscriber(conn, strings.TrimSpace(c.Query("game")))
	h.hub.register(s)
	go s.writePump()

	defer func() {
		h.hub.unregister(s)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxReadSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The feed is one-way; reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
