package dto

import "time"

// Location is a point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InvoiceSettings is the billing configuration of a restaurant.
type InvoiceSettings struct {
	Name               string     `json:"name"`
	Address            string     `json:"address"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	TaxID              string     `json:"taxId"`
	TaxRate            float64    `json:"taxRate"`
	DefaultDeliveryFee float64    `json:"defaultDeliveryFee"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// DeliverySettings is the delivery zone configuration of a restaurant.
type DeliverySettings struct {
	Location               *Location  `json:"location"`
	DeliveryRadiusKm       float64    `json:"deliveryRadiusKm"`
	InZoneDeliveryEnabled  bool       `json:"inZoneDeliveryEnabled"`
	OutZoneDeliveryEnabled bool       `json:"outZoneDeliveryEnabled"`
	OutZoneDeliveryFee     float64    `json:"outZoneDeliveryFee"`
	AllowOutOfRangeOrders  bool       `json:"allowOutOfRangeOrders"`
	UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
}
