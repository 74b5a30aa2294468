// Package ws pushes role-scoped order views to WebSocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/polkiloo/dispatch/internal/adapter/events"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Stream names a subscribable view.
type Stream string

const (
	StreamBoard   Stream = "board"
	StreamDriver  Stream = "driver"
	StreamHistory Stream = "history"
)

// ParseStream validates a stream name from the URL.
func ParseStream(s string) (Stream, bool) {
	switch st := Stream(s); st {
	case StreamBoard, StreamDriver, StreamHistory:
		return st, true
	}
	return "", false
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Renderer derives the current view of a stream for actor.
type Renderer interface {
	View(ctx context.Context, actor model.Actor, restaurantID string, stream Stream) (any, error)
}

// Gauge tracks connected clients.
type Gauge interface {
	StreamOpened()
	StreamClosed()
}

// Frame is a single push to a subscriber.
type Frame struct {
	Stream Stream          `json:"stream"`
	Event  *events.Message `json:"event,omitempty"`
	View   any             `json:"view"`
}

type subscriber struct {
	conn         *websocket.Conn
	actor        model.Actor
	restaurantID string
	stream       Stream
	send         chan []byte

	mu     sync.Mutex
	closed bool
}

// offer queues payload without blocking; false means the buffer is full.
func (s *subscriber) offer(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}

// Hub fans order events out to subscribers of the affected restaurant.
type Hub struct {
	renderer Renderer
	gauge    Gauge
	logger   *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub constructs an empty hub.
func NewHub(renderer Renderer, gauge Gauge, logger *slog.Logger) *Hub {
	return &Hub{
		renderer: renderer,
		gauge:    gauge,
		logger:   logger,
		subs:     make(map[string]map[*subscriber]struct{}),
	}
}

// Publish re-renders every view subscribed to the event's restaurant and
// queues it. Slow subscribers whose buffer is full are disconnected.
func (h *Hub) Publish(ctx context.Context, e model.OrderEvent) error {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.subs[e.RestaurantID]))
	for s := range h.subs[e.RestaurantID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	msg := events.MessageOf(e)
	for _, s := range targets {
		payload, err := h.render(ctx, s, &msg)
		if err != nil {
			h.logger.Warn("render stream view failed",
				slog.String("stream", string(s.stream)),
				slog.Int64("user", s.actor.UserID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !s.offer(payload) {
			h.logger.Warn("stream subscriber too slow, dropping", slog.Int64("user", s.actor.UserID))
			h.unregister(s)
		}
	}
	return nil
}

// Subscribers returns the number of subscribers of restaurantID.
func (h *Hub) Subscribers(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[restaurantID])
}

func (h *Hub) render(ctx context.Context, s *subscriber, event *events.Message) ([]byte, error) {
	view, err := h.renderer.View(ctx, s.actor, s.restaurantID, s.stream)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Stream: s.stream, Event: event, View: view})
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.restaurantID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[s.restaurantID] = set
	}
	set[s] = struct{}{}
	if h.gauge != nil {
		h.gauge.StreamOpened()
	}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[s.restaurantID]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.restaurantID)
	}
	s.close()
	if h.gauge != nil {
		h.gauge.StreamClosed()
	}
}

// CloseAll disconnects every subscriber.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var all []*subscriber
	for _, set := range h.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.RUnlock()
	for _, s := range all {
		h.unregister(s)
	}
}
