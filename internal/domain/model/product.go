package model

import "time"

// Product is a menu item of a restaurant.
type Product struct {
	ID           string
	RestaurantID string
	Name         string
	Description  string
	Category     string
	Price        Amount
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
