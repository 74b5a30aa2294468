package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/dispatch/internal/dispatch"
	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
	"github.com/polkiloo/dispatch/internal/zone"
)

// LineInput is one requested cart line; prices come from the catalog.
type LineInput struct {
	ProductID string
	Quantity  int
}

// QuoteInput describes a cart to be priced.
type QuoteInput struct {
	Type    model.OrderType
	Address *model.Address
	Items   []LineInput
}

// PlaceOrderInput is a checkout request.
type PlaceOrderInput struct {
	CustomerName  string
	Phone         string
	Address       *model.Address
	Type          model.OrderType
	PaymentMethod model.PaymentMethod
	Items         []LineInput
}

// Quote is a priced cart.
type Quote struct {
	Items  []model.OrderItem
	Fee    zone.Fee
	Totals zone.Totals
	// TaxRate is the fraction applied to the subtotal.
	TaxRate float64
}

// TransitionInput is a lifecycle request from a client. Version is the
// order version the client saw; zero skips the check.
type TransitionInput struct {
	Action   string
	DriverID *int64
	Version  int64
}

// OrderDetails is an order with the actions the caller may request next.
type OrderDetails struct {
	Order   model.Order
	Actions []dispatch.Action
}

// OrderUseCase runs checkout and the order lifecycle.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    *UserUseCase
	settings *SettingsUseCase
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users *UserUseCase,
	settings *SettingsUseCase,
	metrics Metrics,
) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		products: products,
		users:    users,
		settings: settings,
		metrics:  metricsOrNoop(metrics),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Quote prices a cart and computes its delivery fee.
func (u *OrderUseCase) Quote(ctx context.Context, restaurantID string, in QuoteInput) (*Quote, error) {
	fields := map[string]string{}
	if in.Type != model.OrderTypeDelivery && in.Type != model.OrderTypePickup {
		fields["orderType"] = "must be delivery or pickup"
	}
	validateLines(in.Items, fields)
	if err := domainErrors.NewValidationError(fields); err != nil {
		return nil, err
	}
	return u.quote(ctx, restaurantID, in)
}

func (u *OrderUseCase) quote(ctx context.Context, restaurantID string, in QuoteInput) (*Quote, error) {
	items, err := u.priceLines(ctx, restaurantID, in.Items)
	if err != nil {
		return nil, err
	}
	s, err := u.settings.Snapshot(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	fee, err := zone.Quote(s.Delivery, s.Invoice, in.Type, in.Address)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Items:   items,
		Fee:     fee,
		Totals:  zone.Price(items, s.Invoice.TaxRate, fee.Amount),
		TaxRate: s.Invoice.TaxRate,
	}, nil
}

func (u *OrderUseCase) priceLines(ctx context.Context, restaurantID string, lines []LineInput) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := u.products.Get(ctx, restaurantID, line.ProductID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil, domainErrors.NewValidationError(map[string]string{"items": fmt.Sprintf("unknown product %s", line.ProductID)})
			}
			return nil, err
		}
		if !p.Available {
			return nil, domainErrors.NewValidationError(map[string]string{"items": fmt.Sprintf("%s is not available", p.Name)})
		}
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

// Place validates a checkout request and stores the new order.
func (u *OrderUseCase) Place(ctx context.Context, actor model.Actor, restaurantID string, in PlaceOrderInput) (*model.Order, error) {
	if actor.Role != model.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers place orders", domainErrors.ErrForbidden)
	}
	if in.Type == model.OrderTypePickup {
		in.Address = nil
	}
	if err := validateCheckout(in); err != nil {
		return nil, err
	}

	q, err := u.quote(ctx, restaurantID, QuoteInput{Type: in.Type, Address: in.Address, Items: in.Items})
	if err != nil {
		return nil, err
	}
	usr, err := u.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	order := model.Order{
		ID:           u.newID(),
		RestaurantID: restaurantID,
		Customer: model.Customer{
			UserID:  actor.UserID,
			Name:    strings.TrimSpace(in.CustomerName),
			Email:   usr.Email,
			Phone:   strings.TrimSpace(in.Phone),
			Address: in.Address,
		},
		Items:         q.Items,
		Type:          in.Type,
		Status:        model.OrderStatusPending,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusUnpaid,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	q.Totals.Apply(&order, q.TaxRate)

	if err := u.orders.Create(ctx, &order, u.event(order, model.OrderEventCreated, "")); err != nil {
		return nil, err
	}
	u.metrics.OrderPlaced(string(order.Type))
	return &order, nil
}

// Transition applies a lifecycle action and persists it with an optimistic
// version check.
func (u *OrderUseCase) Transition(ctx context.Context, actor model.Actor, restaurantID, orderID string, in TransitionInput) (*OrderDetails, error) {
	details, err := u.transition(ctx, actor, restaurantID, orderID, in)
	u.metrics.Transition(in.Action, err)
	return details, err
}

func (u *OrderUseCase) transition(ctx context.Context, actor model.Actor, restaurantID, orderID string, in TransitionInput) (*OrderDetails, error) {
	action, ok := dispatch.ParseAction(in.Action)
	if !ok {
		return nil, domainErrors.NewValidationError(map[string]string{"action": "unknown action"})
	}
	current, err := u.orders.Get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	if in.Version != 0 && in.Version != current.Version {
		return nil, domainErrors.ErrConflict
	}
	if (action == dispatch.ActionAssignDriver || action == dispatch.ActionReassignDriver) && in.DriverID != nil && actor.IsAdmin(restaurantID) {
		if err := u.users.driverOf(ctx, restaurantID, *in.DriverID); err != nil {
			return nil, err
		}
	}

	next, err := dispatch.Apply(*current, actor, dispatch.Request{Action: action, DriverID: in.DriverID}, u.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := u.orders.Update(ctx, &next, current.Version, u.event(next, model.OrderEventTransition, string(action))); err != nil {
		return nil, err
	}
	return &OrderDetails{Order: next, Actions: dispatch.Allowed(next, actor)}, nil
}

// Get returns an order to a participant: restaurant admins, the customer who
// placed it, its assigned driver, or any driver of the restaurant while it is
// waiting for one.
func (u *OrderUseCase) Get(ctx context.Context, actor model.Actor, restaurantID, orderID string) (*OrderDetails, error) {
	o, err := u.orders.Get(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, o) {
		return nil, domainErrors.ErrForbidden
	}
	return &OrderDetails{Order: *o, Actions: dispatch.Allowed(*o, actor)}, nil
}

func canView(actor model.Actor, o *model.Order) bool {
	switch {
	case actor.IsAdmin(o.RestaurantID):
		return true
	case actor.Role == model.RoleCustomer:
		return o.Customer.UserID == actor.UserID
	case actor.IsDriverOf(o.RestaurantID):
		if o.IsAssignedTo(actor.UserID) {
			return true
		}
		return o.Status == model.OrderStatusPreparing && o.Type == model.OrderTypeDelivery && o.AssignedDriverID == nil
	}
	return false
}

func (u *OrderUseCase) event(o model.Order, t model.OrderEventType, action string) model.OrderEvent {
	return model.OrderEvent{
		ID:           u.newID(),
		RestaurantID: o.RestaurantID,
		OrderID:      o.ID,
		Type:         t,
		Action:       action,
		Status:       o.Status,
		Version:      o.Version,
		CreatedAt:    o.UpdatedAt,
	}
}
