package app

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
	"github.com/polkiloo/dispatch/internal/projection"
	"github.com/polkiloo/dispatch/internal/usecase"
)

// Geocoder resolves coordinates to a postal address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*model.Address, error)
}

// DispatchFacade groups the use cases behind a single surface for the
// transport layer and the outbox relay.
type DispatchFacade struct {
	auth     *usecase.AuthUseCase
	users    *usecase.UserUseCase
	orders   *usecase.OrderUseCase
	settings *usecase.SettingsUseCase
	catalog  *usecase.CatalogUseCase
	events   repository.EventRepository
	geocoder Geocoder
}

// NewDispatchFacade creates DispatchFacade instance.
func NewDispatchFacade(
	auth *usecase.AuthUseCase,
	users *usecase.UserUseCase,
	orders *usecase.OrderUseCase,
	settings *usecase.SettingsUseCase,
	catalog *usecase.CatalogUseCase,
	events repository.EventRepository,
	geocoder Geocoder,
) *DispatchFacade {
	return &DispatchFacade{
		auth:     auth,
		users:    users,
		orders:   orders,
		settings: settings,
		catalog:  catalog,
		events:   events,
		geocoder: geocoder,
	}
}

func (f *DispatchFacade) Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error) {
	return f.auth.Register(ctx, in)
}

func (f *DispatchFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *DispatchFacade) Actor(ctx context.Context, token string) (model.Actor, error) {
	return f.auth.Actor(ctx, token)
}

func (f *DispatchFacade) User(ctx context.Context, id int64) (*model.User, error) {
	return f.users.GetByID(ctx, id)
}

func (f *DispatchFacade) UpdateRole(ctx context.Context, actor model.Actor, userID int64, role model.Role, restaurantID string) (*model.User, error) {
	return f.users.UpdateRole(ctx, actor, userID, role, restaurantID)
}

func (f *DispatchFacade) Drivers(ctx context.Context, actor model.Actor, restaurantID string) ([]model.User, error) {
	return f.users.Drivers(ctx, actor, restaurantID)
}

func (f *DispatchFacade) Quote(ctx context.Context, restaurantID string, in usecase.QuoteInput) (*usecase.Quote, error) {
	return f.orders.Quote(ctx, restaurantID, in)
}

func (f *DispatchFacade) PlaceOrder(ctx context.Context, actor model.Actor, restaurantID string, in usecase.PlaceOrderInput) (*model.Order, error) {
	return f.orders.Place(ctx, actor, restaurantID, in)
}

func (f *DispatchFacade) Order(ctx context.Context, actor model.Actor, restaurantID, orderID string) (*usecase.OrderDetails, error) {
	return f.orders.Get(ctx, actor, restaurantID, orderID)
}

func (f *DispatchFacade) Transition(ctx context.Context, actor model.Actor, restaurantID, orderID string, in usecase.TransitionInput) (*usecase.OrderDetails, error) {
	return f.orders.Transition(ctx, actor, restaurantID, orderID, in)
}

func (f *DispatchFacade) AdminBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.AdminBoard, error) {
	return f.orders.AdminBoard(ctx, actor, restaurantID)
}

func (f *DispatchFacade) OrderHistory(ctx context.Context, actor model.Actor, restaurantID string, filter model.OrderFilter) ([]model.Order, error) {
	return f.orders.History(ctx, actor, restaurantID, filter)
}

func (f *DispatchFacade) DriverBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.DriverBoard, error) {
	return f.orders.DriverBoard(ctx, actor, restaurantID)
}

func (f *DispatchFacade) CustomerHistory(ctx context.Context, actor model.Actor, restaurantID string) (projection.CustomerHistory, error) {
	return f.orders.CustomerHistory(ctx, actor, restaurantID)
}

func (f *DispatchFacade) Dashboard(ctx context.Context, actor model.Actor, restaurantID, rangeName string) (projection.Dashboard, error) {
	return f.orders.Dashboard(ctx, actor, restaurantID, rangeName)
}

func (f *DispatchFacade) PopularItems(ctx context.Context, actor model.Actor, restaurantID, rangeName string, limit int) ([]projection.PopularItem, error) {
	return f.orders.PopularItems(ctx, actor, restaurantID, rangeName, limit)
}

func (f *DispatchFacade) Settings(ctx context.Context, restaurantID string) (model.Settings, error) {
	return f.settings.Snapshot(ctx, restaurantID)
}

func (f *DispatchFacade) SaveInvoiceSettings(ctx context.Context, actor model.Actor, s model.InvoiceSettings) (*model.InvoiceSettings, error) {
	return f.settings.SaveInvoice(ctx, actor, s)
}

func (f *DispatchFacade) SaveDeliverySettings(ctx context.Context, actor model.Actor, s model.DeliverySettings) (*model.DeliverySettings, error) {
	return f.settings.SaveDelivery(ctx, actor, s)
}

func (f *DispatchFacade) Products(ctx context.Context, restaurantID string) ([]model.Product, error) {
	return f.catalog.Products(ctx, restaurantID)
}

func (f *DispatchFacade) CreateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error) {
	return f.catalog.CreateProduct(ctx, actor, p)
}

func (f *DispatchFacade) UpdateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error) {
	return f.catalog.UpdateProduct(ctx, actor, p)
}

func (f *DispatchFacade) Coupons(ctx context.Context, actor model.Actor, restaurantID string) ([]model.Coupon, error) {
	return f.catalog.Coupons(ctx, actor, restaurantID)
}

func (f *DispatchFacade) CreateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error) {
	return f.catalog.CreateCoupon(ctx, actor, c)
}

func (f *DispatchFacade) UpdateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error) {
	return f.catalog.UpdateCoupon(ctx, actor, c)
}

func (f *DispatchFacade) DeleteCoupon(ctx context.Context, actor model.Actor, restaurantID, code string) error {
	return f.catalog.DeleteCoupon(ctx, actor, restaurantID, code)
}

func (f *DispatchFacade) PreviewCoupon(ctx context.Context, restaurantID, code string, subtotal model.Amount) (*usecase.CouponPreview, error) {
	return f.catalog.PreviewCoupon(ctx, restaurantID, code, subtotal)
}

func (f *DispatchFacade) ReverseGeocode(ctx context.Context, lat, lng float64) (*model.Address, error) {
	return f.geocoder.Reverse(ctx, lat, lng)
}

func (f *DispatchFacade) ClaimEvents(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	return f.events.ClaimUnpublished(ctx, limit)
}

func (f *DispatchFacade) MarkEventsPublished(ctx context.Context, ids []string) error {
	return f.events.MarkPublished(ctx, ids)
}

func (f *DispatchFacade) ReleaseEvents(ctx context.Context, ids []string) error {
	return f.events.Release(ctx, ids)
}
