package model

import "time"

// InvoiceSettings is an immutable snapshot of restaurant billing settings.
type InvoiceSettings struct {
	RestaurantID       string
	Name               string
	Address            string
	Phone              string
	Email              string
	TaxID              string
	TaxRate            float64
	DefaultDeliveryFee Amount
	UpdatedAt          time.Time
}

// Location is a point on the globe in decimal degrees.
type Location struct {
	Lat float64
	Lng float64
}

// DeliverySettings is an immutable snapshot of restaurant delivery zone settings.
type DeliverySettings struct {
	RestaurantID           string
	Location               *Location
	DeliveryRadiusKm       float64
	InZoneDeliveryEnabled  bool
	OutZoneDeliveryEnabled bool
	OutZoneDeliveryFee     Amount
	AllowOutOfRangeOrders  bool
	UpdatedAt              time.Time
}

// Settings bundles both snapshots needed at checkout.
type Settings struct {
	Invoice  InvoiceSettings
	Delivery DeliverySettings
}
