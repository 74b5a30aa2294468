package postgres

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

type settingsRepository struct {
	storage *Storage
}

func (r *settingsRepository) GetInvoice(ctx context.Context, restaurantID string) (*model.InvoiceSettings, error) {
	const query = `SELECT restaurant_id, name, address, phone, email, tax_id, tax_rate, default_delivery_fee, updated_at
                   FROM invoice_settings WHERE restaurant_id=$1`
	var s model.InvoiceSettings
	err := r.storage.pool.QueryRow(ctx, query, restaurantID).Scan(
		&s.RestaurantID, &s.Name, &s.Address, &s.Phone, &s.Email, &s.TaxID, &s.TaxRate, &s.DefaultDeliveryFee, &s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingsRepository) SaveInvoice(ctx context.Context, s model.InvoiceSettings) error {
	const query = `INSERT INTO invoice_settings
                       (restaurant_id, name, address, phone, email, tax_id, tax_rate, default_delivery_fee, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   ON CONFLICT (restaurant_id) DO UPDATE SET
                       name=EXCLUDED.name, address=EXCLUDED.address, phone=EXCLUDED.phone,
                       email=EXCLUDED.email, tax_id=EXCLUDED.tax_id, tax_rate=EXCLUDED.tax_rate,
                       default_delivery_fee=EXCLUDED.default_delivery_fee, updated_at=EXCLUDED.updated_at`
	_, err := r.storage.pool.Exec(ctx, query,
		s.RestaurantID, s.Name, s.Address, s.Phone, s.Email, s.TaxID, s.TaxRate, s.DefaultDeliveryFee, s.UpdatedAt,
	)
	return err
}

func (r *settingsRepository) GetDelivery(ctx context.Context, restaurantID string) (*model.DeliverySettings, error) {
	const query = `SELECT restaurant_id, lat, lng, radius_km, in_zone_enabled, out_zone_enabled,
                          out_zone_fee, allow_out_of_range, updated_at
                   FROM delivery_settings WHERE restaurant_id=$1`
	var (
		s        model.DeliverySettings
		lat, lng *float64
	)
	err := r.storage.pool.QueryRow(ctx, query, restaurantID).Scan(
		&s.RestaurantID, &lat, &lng, &s.DeliveryRadiusKm, &s.InZoneDeliveryEnabled, &s.OutZoneDeliveryEnabled,
		&s.OutZoneDeliveryFee, &s.AllowOutOfRangeOrders, &s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if lat != nil && lng != nil {
		s.Location = &model.Location{Lat: *lat, Lng: *lng}
	}
	return &s, nil
}

func (r *settingsRepository) SaveDelivery(ctx context.Context, s model.DeliverySettings) error {
	const query = `INSERT INTO delivery_settings
                       (restaurant_id, lat, lng, radius_km, in_zone_enabled, out_zone_enabled,
                        out_zone_fee, allow_out_of_range, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
                   ON CONFLICT (restaurant_id) DO UPDATE SET
                       lat=EXCLUDED.lat, lng=EXCLUDED.lng, radius_km=EXCLUDED.radius_km,
                       in_zone_enabled=EXCLUDED.in_zone_enabled, out_zone_enabled=EXCLUDED.out_zone_enabled,
                       out_zone_fee=EXCLUDED.out_zone_fee, allow_out_of_range=EXCLUDED.allow_out_of_range,
                       updated_at=EXCLUDED.updated_at`
	var lat, lng *float64
	if s.Location != nil {
		lat, lng = &s.Location.Lat, &s.Location.Lng
	}
	_, err := r.storage.pool.Exec(ctx, query,
		s.RestaurantID, lat, lng, s.DeliveryRadiusKm, s.InZoneDeliveryEnabled, s.OutZoneDeliveryEnabled,
		s.OutZoneDeliveryFee, s.AllowOutOfRangeOrders, s.UpdatedAt,
	)
	return err
}
