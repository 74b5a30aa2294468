package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

const uniqueViolation = "23505"

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New connects to dsn and makes sure the schema exists.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Events() repository.EventRepository {
	return &eventRepository{storage: s}
}

func (s *Storage) Settings() repository.SettingsRepository {
	return &settingsRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Coupons() repository.CouponRepository {
	return &couponRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            display_name TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'customer',
            managed_restaurant_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            customer_user_id BIGINT NOT NULL REFERENCES users(id),
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL,
            customer_address JSONB,
            items JSONB NOT NULL,
            subtotal BIGINT NOT NULL,
            tax_rate DOUBLE PRECISION NOT NULL,
            tax_amount BIGINT NOT NULL,
            delivery_fee BIGINT NOT NULL,
            total_amount BIGINT NOT NULL,
            order_type TEXT NOT NULL,
            status TEXT NOT NULL,
            payment_method TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            assigned_driver_id BIGINT REFERENCES users(id),
            driver_assignment_status TEXT NOT NULL DEFAULT '',
            assigned_by BIGINT REFERENCES users(id),
            payment_received_by_driver BOOLEAN NOT NULL DEFAULT FALSE,
            version BIGINT NOT NULL DEFAULT 1,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (total_amount = subtotal + tax_amount + delivery_fee)
        )`,
		`CREATE TABLE IF NOT EXISTS order_events (
            id UUID PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            order_id UUID NOT NULL REFERENCES orders(id),
            type TEXT NOT NULL,
            action TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            version BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            claimed_at TIMESTAMPTZ,
            published_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS invoice_settings (
            restaurant_id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT '',
            tax_id TEXT NOT NULL DEFAULT '',
            tax_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
            default_delivery_fee BIGINT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS delivery_settings (
            restaurant_id TEXT PRIMARY KEY,
            lat DOUBLE PRECISION,
            lng DOUBLE PRECISION,
            radius_km DOUBLE PRECISION NOT NULL DEFAULT 0,
            in_zone_enabled BOOLEAN NOT NULL DEFAULT TRUE,
            out_zone_enabled BOOLEAN NOT NULL DEFAULT FALSE,
            out_zone_fee BIGINT NOT NULL DEFAULT 0,
            allow_out_of_range BOOLEAN NOT NULL DEFAULT FALSE,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY,
            restaurant_id TEXT NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            price BIGINT NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            restaurant_id TEXT NOT NULL,
            code TEXT NOT NULL,
            discount_type TEXT NOT NULL,
            discount_value DOUBLE PRECISION NOT NULL,
            min_order_amount BIGINT NOT NULL DEFAULT 0,
            valid_from TIMESTAMPTZ,
            valid_to TIMESTAMPTZ,
            usage_limit INTEGER NOT NULL DEFAULT 0,
            used_count INTEGER NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (restaurant_id, code)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_restaurant ON orders(restaurant_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(restaurant_id, customer_user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_driver ON orders(restaurant_id, assigned_driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_events_pending ON order_events(created_at) WHERE published_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_products_restaurant ON products(restaurant_id, category, name)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
