// Package zone decides whether a restaurant delivers to an address and at
// what fee, and prices an order from its lines.
package zone

import (
	"math"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

const earthRadiusKm = 6371

// Fee is the outcome of a delivery quote.
type Fee struct {
	Amount model.Amount
	// DistanceKm is nil when no distance check was made.
	DistanceKm *float64
	InZone     bool
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b model.Location) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Quote computes the delivery fee for an order of the given type.
func Quote(delivery model.DeliverySettings, invoice model.InvoiceSettings, orderType model.OrderType, addr *model.Address) (Fee, error) {
	if orderType == model.OrderTypePickup {
		return Fee{}, nil
	}
	if delivery.AllowOutOfRangeOrders {
		return Fee{Amount: invoice.DefaultDeliveryFee, InZone: true}, nil
	}
	if delivery.Location == nil || delivery.DeliveryRadiusKm <= 0 {
		return Fee{}, domainErrors.ErrDeliverySettingsIncomplete
	}
	if !addr.HasCoordinates() {
		return Fee{}, domainErrors.ErrLocationRequired
	}

	d := Distance(*delivery.Location, model.Location{Lat: *addr.Lat, Lng: *addr.Lng})
	switch {
	case d <= delivery.DeliveryRadiusKm && delivery.InZoneDeliveryEnabled:
		return Fee{Amount: invoice.DefaultDeliveryFee, DistanceKm: &d, InZone: true}, nil
	case delivery.OutZoneDeliveryEnabled:
		return Fee{Amount: delivery.OutZoneDeliveryFee, DistanceKm: &d}, nil
	}
	return Fee{DistanceKm: &d}, domainErrors.ErrOutOfDeliveryRange
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
