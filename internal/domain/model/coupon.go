package model

import "time"

// DiscountType describes how a coupon reduces the subtotal.
type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Coupon is a discount code unique per restaurant.
type Coupon struct {
	RestaurantID   string
	Code           string
	DiscountType   DiscountType
	DiscountValue  float64
	MinOrderAmount Amount
	ValidFrom      *time.Time
	ValidTo        *time.Time
	UsageLimit     int
	UsedCount      int
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Evaluate returns the discount the coupon grants for subtotal at now.
// The second value is false when the coupon cannot be applied.
func (c Coupon) Evaluate(subtotal Amount, now time.Time) (Amount, bool) {
	if !c.Active {
		return 0, false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return 0, false
	}
	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return 0, false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, false
	}
	if subtotal < c.MinOrderAmount {
		return 0, false
	}

	var discount Amount
	switch c.DiscountType {
	case DiscountFixed:
		discount = AmountFromFloat(c.DiscountValue)
	case DiscountPercentage:
		discount = subtotal.MulRate(c.DiscountValue / 100)
	default:
		return 0, false
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, true
}
