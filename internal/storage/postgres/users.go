package postgres

import (
	"context"
	"strings"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

type userRepository struct {
	storage *Storage
}

const userColumns = `id, email, display_name, password_hash, role, managed_restaurant_id, created_at`

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	const query = `INSERT INTO users (email, display_name, password_hash, role, managed_restaurant_id)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	u.Email = strings.ToLower(u.Email)
	err := r.storage.pool.QueryRow(ctx, query, u.Email, u.DisplayName, u.PasswordHash, u.Role, u.ManagedRestaurantID).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role model.Role, restaurantID string) error {
	const query = `UPDATE users SET role=$2, managed_restaurant_id=$3 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, role, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListDrivers(ctx context.Context, restaurantID string) ([]model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users
                   WHERE role=$1 AND managed_restaurant_id=$2 ORDER BY display_name, id`
	rows, err := r.storage.pool.Query(ctx, query, model.RoleDriver, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Role, &u.ManagedRestaurantID, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
