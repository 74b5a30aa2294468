package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

// CatalogUseCase manages menus and coupons.
type CatalogUseCase struct {
	products repository.ProductRepository
	coupons  repository.CouponRepository
	now      func() time.Time
	newID    func() string
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, coupons repository.CouponRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, coupons: coupons, now: time.Now, newID: uuid.NewString}
}

// Products lists the menu of a restaurant.
func (u *CatalogUseCase) Products(ctx context.Context, restaurantID string) ([]model.Product, error) {
	return u.products.List(ctx, restaurantID)
}

// CreateProduct adds a menu item.
func (u *CatalogUseCase) CreateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error) {
	if !actor.IsAdmin(p.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	p.ID = u.newID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces the editable fields of a menu item.
func (u *CatalogUseCase) UpdateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error) {
	if !actor.IsAdmin(p.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	current, err := u.products.Get(ctx, p.RestaurantID, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = u.now().UTC()
	if err := u.products.Update(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Coupons lists discount codes for admins.
func (u *CatalogUseCase) Coupons(ctx context.Context, actor model.Actor, restaurantID string) ([]model.Coupon, error) {
	if !actor.IsAdmin(restaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	return u.coupons.List(ctx, restaurantID)
}

// CreateCoupon stores a new discount code; codes are case-insensitive.
func (u *CatalogUseCase) CreateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error) {
	if !actor.IsAdmin(c.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	c.Code = normalizeCode(c.Code)
	if err := validateCoupon(c); err != nil {
		return nil, err
	}
	now := u.now().UTC()
	c.UsedCount = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := u.coupons.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCoupon replaces a coupon while keeping its usage counter.
func (u *CatalogUseCase) UpdateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error) {
	if !actor.IsAdmin(c.RestaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	c.Code = normalizeCode(c.Code)
	if err := validateCoupon(c); err != nil {
		return nil, err
	}
	current, err := u.coupons.Get(ctx, c.RestaurantID, c.Code)
	if err != nil {
		return nil, err
	}
	c.UsedCount = current.UsedCount
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = u.now().UTC()
	if err := u.coupons.Update(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCoupon removes a coupon.
func (u *CatalogUseCase) DeleteCoupon(ctx context.Context, actor model.Actor, restaurantID, code string) error {
	if !actor.IsAdmin(restaurantID) {
		return domainErrors.ErrForbidden
	}
	return u.coupons.Delete(ctx, restaurantID, normalizeCode(code))
}

// CouponPreview is the discount a coupon would grant.
type CouponPreview struct {
	Code     string
	Subtotal model.Amount
	Discount model.Amount
}

// PreviewCoupon evaluates a code against subtotal without consuming it.
func (u *CatalogUseCase) PreviewCoupon(ctx context.Context, restaurantID, code string, subtotal model.Amount) (*CouponPreview, error) {
	if subtotal < 0 {
		return nil, domainErrors.NewValidationError(map[string]string{"subtotal": "must not be negative"})
	}
	c, err := u.coupons.Get(ctx, restaurantID, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	discount, ok := c.Evaluate(subtotal, u.now())
	if !ok {
		return nil, domainErrors.ErrCouponNotApplicable
	}
	return &CouponPreview{Code: c.Code, Subtotal: subtotal, Discount: discount}, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
