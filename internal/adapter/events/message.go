// Package events delivers outbox order events to external subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Publisher hands an event to a subscriber transport.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// Subscriber is a bus shared by every instance. Handlers see the events
// relayed by any of them, this one included.
type Subscriber interface {
	Subscribe(handler Publisher) (stop func(), err error)
}

// Message is the wire form of an order event.
type Message struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	OrderID      string    `json:"orderId"`
	Type         string    `json:"type"`
	Action       string    `json:"action,omitempty"`
	Status       string    `json:"status"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MessageOf converts an outbox record to its wire form.
func MessageOf(e model.OrderEvent) Message {
	return Message{
		ID:           e.ID,
		RestaurantID: e.RestaurantID,
		OrderID:      e.OrderID,
		Type:         string(e.Type),
		Action:       e.Action,
		Status:       string(e.Status),
		Version:      e.Version,
		CreatedAt:    e.CreatedAt.UTC(),
	}
}

// Encode marshals e as JSON.
func Encode(e model.OrderEvent) ([]byte, error) {
	return json.Marshal(MessageOf(e))
}

// Decode parses the wire form of an event.
func Decode(data []byte) (model.OrderEvent, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return model.OrderEvent{}, err
	}
	if m.RestaurantID == "" || m.OrderID == "" {
		return model.OrderEvent{}, errors.New("event without restaurant or order")
	}
	return model.OrderEvent{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		OrderID:      m.OrderID,
		Type:         model.OrderEventType(m.Type),
		Action:       m.Action,
		Status:       model.OrderStatus(m.Status),
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
	}, nil
}

// Subject is the NATS subject an event is published on.
func Subject(e model.OrderEvent) string {
	return "orders." + e.RestaurantID + "." + string(e.Type)
}
