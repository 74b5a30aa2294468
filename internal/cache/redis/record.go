package redis

import (
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

type settingsRecord struct {
	Generation int64          `json:"generation"`
	Invoice    invoiceRecord  `json:"invoice"`
	Delivery   deliveryRecord `json:"delivery"`
}

type invoiceRecord struct {
	RestaurantID       string    `json:"restaurantId"`
	Name               string    `json:"name"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	TaxID              string    `json:"taxId"`
	TaxRate            float64   `json:"taxRate"`
	DefaultDeliveryFee int64     `json:"defaultDeliveryFee"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type locationRecord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type deliveryRecord struct {
	RestaurantID           string          `json:"restaurantId"`
	Location               *locationRecord `json:"location,omitempty"`
	DeliveryRadiusKm       float64         `json:"deliveryRadiusKm"`
	InZoneDeliveryEnabled  bool            `json:"inZoneDeliveryEnabled"`
	OutZoneDeliveryEnabled bool            `json:"outZoneDeliveryEnabled"`
	OutZoneDeliveryFee     int64           `json:"outZoneDeliveryFee"`
	AllowOutOfRangeOrders  bool            `json:"allowOutOfRangeOrders"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func recordOf(s model.Settings, generation int64) settingsRecord {
	rec := settingsRecord{
		Generation: generation,
		Invoice: invoiceRecord{
			RestaurantID:       s.Invoice.RestaurantID,
			Name:               s.Invoice.Name,
			Address:            s.Invoice.Address,
			Phone:              s.Invoice.Phone,
			Email:              s.Invoice.Email,
			TaxID:              s.Invoice.TaxID,
			TaxRate:            s.Invoice.TaxRate,
			DefaultDeliveryFee: int64(s.Invoice.DefaultDeliveryFee),
			UpdatedAt:          s.Invoice.UpdatedAt,
		},
		Delivery: deliveryRecord{
			RestaurantID:           s.Delivery.RestaurantID,
			DeliveryRadiusKm:       s.Delivery.DeliveryRadiusKm,
			InZoneDeliveryEnabled:  s.Delivery.InZoneDeliveryEnabled,
			OutZoneDeliveryEnabled: s.Delivery.OutZoneDeliveryEnabled,
			OutZoneDeliveryFee:     int64(s.Delivery.OutZoneDeliveryFee),
			AllowOutOfRangeOrders:  s.Delivery.AllowOutOfRangeOrders,
			UpdatedAt:              s.Delivery.UpdatedAt,
		},
	}
	if loc := s.Delivery.Location; loc != nil {
		rec.Delivery.Location = &locationRecord{Lat: loc.Lat, Lng: loc.Lng}
	}
	return rec
}

func (r settingsRecord) toModel() model.Settings {
	s := model.Settings{
		Invoice: model.InvoiceSettings{
			RestaurantID:       r.Invoice.RestaurantID,
			Name:               r.Invoice.Name,
			Address:            r.Invoice.Address,
			Phone:              r.Invoice.Phone,
			Email:              r.Invoice.Email,
			TaxID:              r.Invoice.TaxID,
			TaxRate:            r.Invoice.TaxRate,
			DefaultDeliveryFee: model.Amount(r.Invoice.DefaultDeliveryFee),
			UpdatedAt:          r.Invoice.UpdatedAt,
		},
		Delivery: model.DeliverySettings{
			RestaurantID:           r.Delivery.RestaurantID,
			DeliveryRadiusKm:       r.Delivery.DeliveryRadiusKm,
			InZoneDeliveryEnabled:  r.Delivery.InZoneDeliveryEnabled,
			OutZoneDeliveryEnabled: r.Delivery.OutZoneDeliveryEnabled,
			OutZoneDeliveryFee:     model.Amount(r.Delivery.OutZoneDeliveryFee),
			AllowOutOfRangeOrders:  r.Delivery.AllowOutOfRangeOrders,
			UpdatedAt:              r.Delivery.UpdatedAt,
		},
	}
	if loc := r.Delivery.Location; loc != nil {
		s.Delivery.Location = &model.Location{Lat: loc.Lat, Lng: loc.Lng}
	}
	return s
}
