package repository

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// ProductRepository manages restaurant menus.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Get(ctx context.Context, restaurantID, productID string) (*model.Product, error)
	List(ctx context.Context, restaurantID string) ([]model.Product, error)
}

// CouponRepository manages discount codes.
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, restaurantID, code string) error
	Get(ctx context.Context, restaurantID, code string) (*model.Coupon, error)
	List(ctx context.Context, restaurantID string) ([]model.Coupon, error)
}
