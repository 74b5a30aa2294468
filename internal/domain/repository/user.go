package repository

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role, restaurantID string) error
	ListDrivers(ctx context.Context, restaurantID string) ([]model.User, error)
}
