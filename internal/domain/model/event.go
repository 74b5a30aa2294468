package model

import "time"

// OrderEventType names what happened to an order.
type OrderEventType string

const (
	OrderEventCreated    OrderEventType = "created"
	OrderEventTransition OrderEventType = "transition"
)

// OrderEvent is an outbox record written alongside every order mutation.
type OrderEvent struct {
	ID           string
	RestaurantID string
	OrderID      string
	Type         OrderEventType
	Action       string
	Status       OrderStatus
	Version      int64
	CreatedAt    time.Time
}
