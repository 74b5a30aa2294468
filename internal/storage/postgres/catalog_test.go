package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

var productCols = []string{"id", "restaurant_id", "name", "description", "category", "price", "available", "created_at", "updated_at"}

var couponCols = []string{
	"restaurant_id", "code", "discount_type", "discount_value", "min_order_amount",
	"valid_from", "valid_to", "usage_limit", "used_count", "active", "created_at", "updated_at",
}

func TestProductRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &productRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()

	p := &model.Product{ID: "p1", RestaurantID: "r1", Name: "Dosa", Category: "Mains", Price: 12000, Available: true, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO products").WithArgs("p1", "r1", "Dosa", "", "Mains", model.Amount(12000), true, now, now).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO products").WithArgs(anyArgs(9)...).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Create(ctx, p); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("UPDATE products SET").WithArgs(anyArgs(8)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE products SET").WithArgs(anyArgs(8)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.Update(ctx, p); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM products WHERE restaurant_id=.* AND id=").WithArgs("r1", "p1").WillReturnRows(
		pgxmockv3.NewRows(productCols).AddRow("p1", "r1", "Dosa", "", "Mains", model.Amount(12000), true, now, now))
	got, err := repo.Get(ctx, "r1", "p1")
	if err != nil || got.Price != 12000 || !got.Available {
		t.Fatalf("unexpected product: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM products WHERE restaurant_id=.* AND id=").WithArgs("r1", "nope").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(ctx, "r1", "nope"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("ORDER BY category, name").WithArgs("r1").WillReturnRows(
		pgxmockv3.NewRows(productCols).
			AddRow("p1", "r1", "Dosa", "", "Mains", model.Amount(12000), true, now, now).
			AddRow("p2", "r1", "Chai", "", "Drinks", model.Amount(2000), false, now, now))
	list, err := repo.List(ctx, "r1")
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	mock.ExpectQuery("ORDER BY category, name").WithArgs("r2").WillReturnError(errors.New("query"))
	if _, err := repo.List(ctx, "r2"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCouponRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &couponRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()
	until := now.Add(72 * time.Hour)

	c := &model.Coupon{
		RestaurantID: "r1", Code: "WELCOME10", DiscountType: model.DiscountPercentage, DiscountValue: 10,
		MinOrderAmount: 20000, ValidTo: &until, UsageLimit: 100, Active: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO coupons").WithArgs(anyArgs(12)...).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO coupons").WithArgs(anyArgs(12)...).WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Create(ctx, c); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectExec("UPDATE coupons SET").WithArgs(anyArgs(10)...).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.Update(ctx, c); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("DELETE FROM coupons").WithArgs("r1", "WELCOME10").WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := repo.Delete(ctx, "r1", "WELCOME10"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM coupons").WithArgs("r1", "GONE").WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := repo.Delete(ctx, "r1", "GONE"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM coupons WHERE restaurant_id=.* AND code=").WithArgs("r1", "WELCOME10").WillReturnRows(
		pgxmockv3.NewRows(couponCols).AddRow("r1", "WELCOME10", model.DiscountPercentage, 10.0, model.Amount(20000),
			nil, &until, 100, 3, true, now, now))
	got, err := repo.Get(ctx, "r1", "WELCOME10")
	if err != nil || got.UsedCount != 3 || got.ValidFrom != nil || got.ValidTo == nil {
		t.Fatalf("unexpected coupon: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM coupons WHERE restaurant_id=.* ORDER BY").WithArgs("r1").WillReturnRows(pgxmockv3.NewRows(couponCols))
	list, err := repo.List(ctx, "r1")
	if err != nil || len(list) != 0 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
