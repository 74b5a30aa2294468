package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

// UserUseCase covers staff management.
type UserUseCase struct {
	users repository.UserRepository
}

// NewUserUseCase constructs UserUseCase.
func NewUserUseCase(users repository.UserRepository) *UserUseCase {
	return &UserUseCase{users: users}
}

// UpdateRole changes role and managed restaurant of a user. Only super admins
// may do this; admins and drivers must be bound to a restaurant.
func (u *UserUseCase) UpdateRole(ctx context.Context, actor model.Actor, userID int64, role model.Role, restaurantID string) (*model.User, error) {
	if actor.Role != model.RoleSuperAdmin {
		return nil, domainErrors.ErrForbidden
	}
	restaurantID = strings.TrimSpace(restaurantID)

	fields := map[string]string{}
	if !role.Valid() {
		fields["role"] = "unknown role"
	}
	if (role == model.RoleAdmin || role == model.RoleDriver) && restaurantID == "" {
		fields["restaurantId"] = "required for admin and driver"
	}
	if err := domainErrors.NewValidationError(fields); err != nil {
		return nil, err
	}
	if role == model.RoleCustomer || role == model.RoleSuperAdmin {
		restaurantID = ""
	}

	if err := u.users.UpdateRole(ctx, userID, role, restaurantID); err != nil {
		return nil, err
	}
	return u.users.GetByID(ctx, userID)
}

// GetByID fetches user by identifier.
func (u *UserUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// Drivers lists the drivers of a restaurant for its admins.
func (u *UserUseCase) Drivers(ctx context.Context, actor model.Actor, restaurantID string) ([]model.User, error) {
	if !actor.IsAdmin(restaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	return u.users.ListDrivers(ctx, restaurantID)
}

// driverOf checks that driverID is a driver working for restaurantID.
func (u *UserUseCase) driverOf(ctx context.Context, restaurantID string, driverID int64) error {
	usr, err := u.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrInvalidDriver
		}
		return err
	}
	if usr.Role != model.RoleDriver || usr.ManagedRestaurantID != restaurantID {
		return domainErrors.ErrInvalidDriver
	}
	return nil
}
