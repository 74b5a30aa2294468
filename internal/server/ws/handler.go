package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Authenticator resolves a token to its actor.
type Authenticator interface {
	Actor(ctx context.Context, token string) (model.Actor, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades GET /api/restaurants/:rid/stream/:stream. Browsers cannot
// set headers on WebSocket requests, so the token may come as ?token=.
func (h *Hub) Handler(auth Authenticator, tokenFromRequest func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stream, ok := ParseStream(c.Param("stream"))
		if !ok {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		token := c.Query("token")
		if token == "" && tokenFromRequest != nil {
			token = tokenFromRequest(c)
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		actor, err := auth.Actor(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		sub := &subscriber{
			actor:        actor,
			restaurantID: c.Param("rid"),
			stream:       stream,
			send:         make(chan []byte, sendBuffer),
		}
		initial, err := h.render(c.Request.Context(), sub, nil)
		if err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrForbidden):
				c.AbortWithStatus(http.StatusForbidden)
			default:
				c.AbortWithStatus(http.StatusInternalServerError)
			}
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		sub.conn = conn
		sub.offer(initial)
		h.register(sub)

		go h.writePump(sub)
		h.readPump(sub)
	}
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(s *subscriber) {
	defer h.unregister(s)
	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.unregister(s)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(s)
				return
			}
		}
	}
}
