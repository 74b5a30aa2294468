package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

type productRepository struct {
	storage *Storage
}

type couponRepository struct {
	storage *Storage
}

const productColumns = `id, restaurant_id, name, description, category, price, available, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	const query = `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.storage.pool.Exec(ctx, query,
		p.ID, p.RestaurantID, p.Name, p.Description, p.Category, p.Price, p.Available, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	const query = `UPDATE products SET name=$3, description=$4, category=$5, price=$6, available=$7, updated_at=$8
                   WHERE restaurant_id=$1 AND id=$2`
	tag, err := r.storage.pool.Exec(ctx, query,
		p.RestaurantID, p.ID, p.Name, p.Description, p.Category, p.Price, p.Available, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, restaurantID, productID string) (*model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE restaurant_id=$1 AND id=$2`
	return scanProduct(r.storage.pool.QueryRow(ctx, query, restaurantID, productID))
}

func (r *productRepository) List(ctx context.Context, restaurantID string) ([]model.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE restaurant_id=$1 ORDER BY category, name`
	rows, err := r.storage.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

const couponColumns = `restaurant_id, code, discount_type, discount_value, min_order_amount,
    valid_from, valid_to, usage_limit, used_count, active, created_at, updated_at`

func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	const query = `INSERT INTO coupons (` + couponColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.storage.pool.Exec(ctx, query,
		c.RestaurantID, c.Code, c.DiscountType, c.DiscountValue, c.MinOrderAmount,
		c.ValidFrom, c.ValidTo, c.UsageLimit, c.UsedCount, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

func (r *couponRepository) Update(ctx context.Context, c *model.Coupon) error {
	const query = `UPDATE coupons SET discount_type=$3, discount_value=$4, min_order_amount=$5,
                       valid_from=$6, valid_to=$7, usage_limit=$8, active=$9, updated_at=$10
                   WHERE restaurant_id=$1 AND code=$2`
	tag, err := r.storage.pool.Exec(ctx, query,
		c.RestaurantID, c.Code, c.DiscountType, c.DiscountValue, c.MinOrderAmount,
		c.ValidFrom, c.ValidTo, c.UsageLimit, c.Active, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, restaurantID, code string) error {
	const query = `DELETE FROM coupons WHERE restaurant_id=$1 AND code=$2`
	tag, err := r.storage.pool.Exec(ctx, query, restaurantID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *couponRepository) Get(ctx context.Context, restaurantID, code string) (*model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE restaurant_id=$1 AND code=$2`
	return scanCoupon(r.storage.pool.QueryRow(ctx, query, restaurantID, code))
}

func (r *couponRepository) List(ctx context.Context, restaurantID string) ([]model.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE restaurant_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.RestaurantID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount,
		&c.ValidFrom, &c.ValidTo, &c.UsageLimit, &c.UsedCount, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
