package repository

import (
	"context"
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create stores a new order together with its creation event.
	Create(ctx context.Context, order *model.Order, event model.OrderEvent) error
	Get(ctx context.Context, restaurantID, orderID string) (*model.Order, error)
	// Update persists order if the stored version equals expectedVersion.
	// Implementations return ErrConflict on a version mismatch.
	Update(ctx context.Context, order *model.Order, expectedVersion int64, event model.OrderEvent) error
	ListByRestaurant(ctx context.Context, restaurantID string, filter model.OrderFilter) ([]model.Order, error)
	ListByCustomer(ctx context.Context, restaurantID string, userID int64) ([]model.Order, error)
	ListAvailableForDrivers(ctx context.Context, restaurantID string) ([]model.Order, error)
	ListByDriver(ctx context.Context, restaurantID string, driverID int64) ([]model.Order, error)
	ListCreatedSince(ctx context.Context, restaurantID string, since time.Time) ([]model.Order, error)
}

// EventRepository exposes the order event outbox.
type EventRepository interface {
	ClaimUnpublished(ctx context.Context, limit int) ([]model.OrderEvent, error)
	MarkPublished(ctx context.Context, ids []string) error
	// Release makes claimed but unpublished events visible to the next poll.
	Release(ctx context.Context, ids []string) error
}
