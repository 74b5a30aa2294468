package dto

import "time"

// Product is a menu item.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
}

// Coupon is a discount code.
type Coupon struct {
	Code           string     `json:"code"`
	DiscountType   string     `json:"discountType"`
	DiscountValue  float64    `json:"discountValue"`
	MinOrderAmount float64    `json:"minOrderAmount"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidTo        *time.Time `json:"validTo,omitempty"`
	UsageLimit     int        `json:"usageLimit"`
	UsedCount      int        `json:"usedCount"`
	Active         bool       `json:"active"`
}

// CouponPreviewResponse reports the discount a code would grant.
type CouponPreviewResponse struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// DriverResponse is a selectable driver.
type DriverResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}
