package repository

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// SettingsRepository stores per-restaurant invoice and delivery settings.
type SettingsRepository interface {
	GetInvoice(ctx context.Context, restaurantID string) (*model.InvoiceSettings, error)
	SaveInvoice(ctx context.Context, settings model.InvoiceSettings) error
	GetDelivery(ctx context.Context, restaurantID string) (*model.DeliverySettings, error)
	SaveDelivery(ctx context.Context, settings model.DeliverySettings) error
}

// SettingsCache keeps recent settings snapshots close to the request path.
// Every snapshot is stamped with the generation observed before it was
// loaded; Invalidate advances the generation so a snapshot loaded before a
// save can never be served after it.
type SettingsCache interface {
	// Get returns ErrCacheMiss together with the current generation when no
	// snapshot of that generation is cached.
	Get(ctx context.Context, restaurantID string) (*model.Settings, int64, error)
	Set(ctx context.Context, settings model.Settings, generation int64) error
	Invalidate(ctx context.Context, restaurantID string) error
}
