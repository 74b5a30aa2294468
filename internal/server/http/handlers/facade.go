package handlers

import (
	"context"

	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/projection"
	"github.com/polkiloo/dispatch/internal/server/http/middleware"
	"github.com/polkiloo/dispatch/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	User(ctx context.Context, id int64) (*model.User, error)
}

// OrderFacade covers checkout and lifecycle transitions.
type OrderFacade interface {
	Quote(ctx context.Context, restaurantID string, in usecase.QuoteInput) (*usecase.Quote, error)
	PlaceOrder(ctx context.Context, actor model.Actor, restaurantID string, in usecase.PlaceOrderInput) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, restaurantID, orderID string) (*usecase.OrderDetails, error)
	Transition(ctx context.Context, actor model.Actor, restaurantID, orderID string, in usecase.TransitionInput) (*usecase.OrderDetails, error)
}

// ViewFacade exposes the role-scoped projections.
type ViewFacade interface {
	AdminBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.AdminBoard, error)
	OrderHistory(ctx context.Context, actor model.Actor, restaurantID string, filter model.OrderFilter) ([]model.Order, error)
	DriverBoard(ctx context.Context, actor model.Actor, restaurantID string) (projection.DriverBoard, error)
	CustomerHistory(ctx context.Context, actor model.Actor, restaurantID string) (projection.CustomerHistory, error)
	Dashboard(ctx context.Context, actor model.Actor, restaurantID, rangeName string) (projection.Dashboard, error)
	PopularItems(ctx context.Context, actor model.Actor, restaurantID, rangeName string, limit int) ([]projection.PopularItem, error)
	Drivers(ctx context.Context, actor model.Actor, restaurantID string) ([]model.User, error)
}

// SettingsFacade reads and writes restaurant settings.
type SettingsFacade interface {
	Settings(ctx context.Context, restaurantID string) (model.Settings, error)
	SaveInvoiceSettings(ctx context.Context, actor model.Actor, s model.InvoiceSettings) (*model.InvoiceSettings, error)
	SaveDeliverySettings(ctx context.Context, actor model.Actor, s model.DeliverySettings) (*model.DeliverySettings, error)
}

// CatalogFacade manages menus and coupons.
type CatalogFacade interface {
	Products(ctx context.Context, restaurantID string) ([]model.Product, error)
	CreateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor model.Actor, p model.Product) (*model.Product, error)
	Coupons(ctx context.Context, actor model.Actor, restaurantID string) ([]model.Coupon, error)
	CreateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, actor model.Actor, c model.Coupon) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, actor model.Actor, restaurantID, code string) error
	PreviewCoupon(ctx context.Context, restaurantID, code string, subtotal model.Amount) (*usecase.CouponPreview, error)
}

// StaffFacade manages roles.
type StaffFacade interface {
	UpdateRole(ctx context.Context, actor model.Actor, userID int64, role model.Role, restaurantID string) (*model.User, error)
}

// GeocodeFacade resolves coordinates to addresses.
type GeocodeFacade interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*model.Address, error)
}

// DispatchFacade aggregates the full set of operations used across handlers.
type DispatchFacade interface {
	middleware.ActorResolver
	AuthFacade
	OrderFacade
	ViewFacade
	SettingsFacade
	CatalogFacade
	StaffFacade
	GeocodeFacade
}
