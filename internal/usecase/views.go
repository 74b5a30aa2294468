package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/projection"
)

const (
	// closedBoardLimit caps the closed column; open orders are never cut.
	closedBoardLimit    = 500
	defaultPopularItems = 5
)

// AdminBoard groups restaurant orders into board columns: every open order
// and the most recent closed ones.
func (u *OrderUseCase) AdminBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.AdminBoard, error) {
	if !actor.IsAdmin(restaurantID) {
		return projection.AdminBoard{}, domainErrors.ErrForbidden
	}
	open, err := u.orders.ListByRestaurant(ctx, restaurantID, model.OrderFilter{Statuses: model.OpenStatuses()})
	if err != nil {
		return projection.AdminBoard{}, err
	}
	closed, err := u.orders.ListByRestaurant(ctx, restaurantID, model.OrderFilter{
		Statuses: model.TerminalStatuses(),
		Limit:    closedBoardLimit,
	})
	if err != nil {
		return projection.AdminBoard{}, err
	}
	return projection.BuildAdminBoard(append(open, closed...)), nil
}

// History lists restaurant orders matching filter.
func (u *OrderUseCase) History(ctx context.Context, actor model.Actor, restaurantID string, filter model.OrderFilter) ([]model.Order, error) {
	if !actor.IsAdmin(restaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	fields := map[string]string{}
	if filter.Status != nil && !filter.Status.Valid() {
		fields["status"] = "unknown status"
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		fields["to"] = "must not precede from"
	}
	if filter.Limit < 0 {
		fields["limit"] = "must not be negative"
	}
	if err := domainErrors.NewValidationError(fields); err != nil {
		return nil, err
	}
	return u.orders.ListByRestaurant(ctx, restaurantID, filter)
}

// DriverBoard returns the orders a driver can pick from and the ones they hold.
func (u *OrderUseCase) DriverBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.DriverBoard, error) {
	if !actor.IsDriverOf(restaurantID) {
		return projection.DriverBoard{}, domainErrors.ErrForbidden
	}
	available, err := u.orders.ListAvailableForDrivers(ctx, restaurantID)
	if err != nil {
		return projection.DriverBoard{}, err
	}
	mine, err := u.orders.ListByDriver(ctx, restaurantID, actor.UserID)
	if err != nil {
		return projection.DriverBoard{}, err
	}
	return projection.BuildDriverBoard(actor.UserID, available, mine), nil
}

// CustomerHistory returns the caller's own orders split into current and
// recently closed.
func (u *OrderUseCase) CustomerHistory(ctx context.Context, actor model.Actor, restaurantID string) (projection.CustomerHistory, error) {
	if actor.Role != model.RoleCustomer {
		return projection.CustomerHistory{}, domainErrors.ErrForbidden
	}
	orders, err := u.orders.ListByCustomer(ctx, restaurantID, actor.UserID)
	if err != nil {
		return projection.CustomerHistory{}, err
	}
	return projection.BuildCustomerHistory(orders, u.now()), nil
}

// Dashboard computes headline metrics for the requested range.
func (u *OrderUseCase) Dashboard(ctx context.Context, actor model.Actor, restaurantID, rangeName string) (projection.Dashboard, error) {
	if !actor.IsAdmin(restaurantID) {
		return projection.Dashboard{}, domainErrors.ErrForbidden
	}
	r, ok := projection.ParseRange(rangeName)
	if !ok {
		return projection.Dashboard{}, domainErrors.NewValidationError(map[string]string{"range": "must be today, week, month or year"})
	}
	now := u.now()
	orders, err := u.orders.ListCreatedSince(ctx, restaurantID, r.Since(now))
	if err != nil {
		return projection.Dashboard{}, err
	}
	return projection.BuildDashboard(orders, r, now), nil
}

// PopularItems ranks products sold within the current period of rangeName.
func (u *OrderUseCase) PopularItems(ctx context.Context, actor model.Actor, restaurantID, rangeName string, limit int) ([]projection.PopularItem, error) {
	if !actor.IsAdmin(restaurantID) {
		return nil, domainErrors.ErrForbidden
	}
	r, ok := projection.ParseRange(rangeName)
	if !ok {
		return nil, domainErrors.NewValidationError(map[string]string{"range": "must be today, week, month or year"})
	}
	if limit <= 0 {
		limit = defaultPopularItems
	}
	now := u.now()
	current, _ := r.Periods(now)
	orders, err := u.orders.ListCreatedSince(ctx, restaurantID, current.Start)
	if err != nil {
		return nil, err
	}
	inPeriod := orders[:0:0]
	for _, o := range orders {
		if current.Contains(o.CreatedAt) {
			inPeriod = append(inPeriod, o)
		}
	}
	return projection.PopularItems(inPeriod, limit), nil
}
