package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/dispatch/internal/dispatch"
	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	testhelpers "github.com/polkiloo/dispatch/internal/test"
)

var fixedNow = time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

var (
	adminActor    = model.Actor{UserID: 100, Role: model.RoleAdmin, RestaurantID: "r1"}
	driverActor   = model.Actor{UserID: 200, Role: model.RoleDriver, RestaurantID: "r1"}
	customerActor = model.Actor{UserID: 1, Role: model.RoleCustomer}
)

type metricsStub struct {
	mu          sync.Mutex
	placed      []string
	transitions []string
	rejected    int
	cacheHits   int
	cacheMisses int
}

func (m *metricsStub) OrderPlaced(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed = append(m.placed, t)
}

func (m *metricsStub) Transition(action string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, action)
	if err != nil {
		m.rejected++
	}
}

func (m *metricsStub) SettingsCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

type orderFixture struct {
	uc       *OrderUseCase
	orders   *testhelpers.OrderRepositoryStub
	products *testhelpers.ProductRepositoryStub
	settings *testhelpers.SettingsRepositoryStub
	metrics  *metricsStub
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	users := testhelpers.NewUserRepositoryStub()
	users.Put(model.User{ID: 1, Email: "ann@example.com", Role: model.RoleCustomer})
	users.Put(model.User{ID: 2, Email: "bob@example.com", Role: model.RoleCustomer})
	users.Put(model.User{ID: 100, Email: "admin@example.com", Role: model.RoleAdmin, ManagedRestaurantID: "r1"})
	users.Put(model.User{ID: 200, Email: "driver@example.com", Role: model.RoleDriver, ManagedRestaurantID: "r1"})
	users.Put(model.User{ID: 201, Email: "other@example.com", Role: model.RoleDriver, ManagedRestaurantID: "r2"})

	products := testhelpers.NewProductRepositoryStub(
		model.Product{ID: "p1", RestaurantID: "r1", Name: "Pizza", Price: 1000, Available: true},
		model.Product{ID: "p2", RestaurantID: "r1", Name: "Soup", Price: 450, Available: false},
	)

	settings := testhelpers.NewSettingsRepositoryStub()
	settings.Invoice["r1"] = model.InvoiceSettings{RestaurantID: "r1", TaxRate: 0.1, DefaultDeliveryFee: 300}
	settings.Delivery["r1"] = model.DeliverySettings{
		RestaurantID:          "r1",
		Location:              &model.Location{Lat: 40, Lng: -74},
		DeliveryRadiusKm:      5,
		InZoneDeliveryEnabled: true,
	}

	m := &metricsStub{}
	orders := testhelpers.NewOrderRepositoryStub()
	settingsUC := NewSettingsUseCase(settings, testhelpers.NewSettingsCacheStub(), m, discardLogger())
	uc := NewOrderUseCase(orders, products, NewUserUseCase(users), settingsUC, m)
	uc.now = func() time.Time { return fixedNow }
	seq := 0
	uc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return orderFixture{uc: uc, orders: orders, products: products, settings: settings, metrics: m}
}

func coords(lat, lng float64) *model.Address {
	return &model.Address{Street: "1 Main St", City: "Town", ZipCode: "00001", Country: "US", Lat: &lat, Lng: &lng}
}

func deliveryInput(addr *model.Address) PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Ann",
		Phone:         "555 123 4567",
		Address:       addr,
		Type:          model.OrderTypeDelivery,
		PaymentMethod: model.PaymentMethodCashOnDelivery,
		Items:         []LineInput{{ProductID: "p1", Quantity: 2}},
	}
}

// expectFields fails unless err is a validation error naming every field.
func expectFields(t *testing.T, err error, fields ...string) map[string]string {
	t.Helper()
	verr, ok := domainErrors.IsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range fields {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected %q in %v", field, verr.Fields)
		}
	}
	return verr.Fields
}

func TestOrderUseCasePlaceDeliveryInZone(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.uc.Place(context.Background(), customerActor, "r1", deliveryInput(coords(40.01, -74)))
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}
	if order.Status != model.OrderStatusPending || order.PaymentStatus != model.PaymentStatusUnpaid {
		t.Fatalf("unexpected initial state %s/%s", order.Status, order.PaymentStatus)
	}
	if order.Subtotal != 2000 || order.TaxAmount != 200 || order.DeliveryFee != 300 || order.TotalAmount != 2500 {
		t.Fatalf("unexpected totals %d/%d/%d/%d", order.Subtotal, order.TaxAmount, order.DeliveryFee, order.TotalAmount)
	}
	if order.Customer.Email != "ann@example.com" {
		t.Fatalf("customer email not copied: %q", order.Customer.Email)
	}
	if order.Version != 1 || !order.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected version %d created %v", order.Version, order.CreatedAt)
	}

	if len(f.orders.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(f.orders.Events))
	}
	if e := f.orders.Events[0]; e.Type != model.OrderEventCreated || e.OrderID != order.ID {
		t.Fatalf("unexpected event %+v", e)
	}
	if !slices.Equal(f.metrics.placed, []string{"delivery"}) {
		t.Fatalf("unexpected placed metrics %v", f.metrics.placed)
	}
}

func TestOrderUseCasePlaceRejections(t *testing.T) {
	tests := []struct {
		name  string
		actor model.Actor
		input func() PlaceOrderInput
		want  error
	}{
		{
			name:  "admin cannot place",
			actor: adminActor,
			input: func() PlaceOrderInput { return deliveryInput(coords(40.01, -74)) },
			want:  domainErrors.ErrForbidden,
		},
		{
			name:  "outside radius",
			actor: customerActor,
			input: func() PlaceOrderInput { return deliveryInput(coords(41, -74)) },
			want:  domainErrors.ErrOutOfDeliveryRange,
		},
		{
			name:  "missing coordinates",
			actor: customerActor,
			input: func() PlaceOrderInput {
				addr := coords(0, 0)
				addr.Lat, addr.Lng = nil, nil
				return deliveryInput(addr)
			},
			want: domainErrors.ErrLocationRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			if _, err := f.uc.Place(context.Background(), tt.actor, "r1", tt.input()); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.orders.Events) != 0 {
				t.Fatalf("rejected order wrote events: %v", f.orders.Events)
			}
		})
	}
}

func TestOrderUseCasePlaceValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	in := deliveryInput(nil)
	in.Phone = "12345"
	in.CustomerName = " "
	_, err := f.uc.Place(ctx, customerActor, "r1", in)
	expectFields(t, err, "phone", "customerName", "address")

	pickup := deliveryInput(nil)
	pickup.Type = model.OrderTypePickup
	_, err = f.uc.Place(ctx, customerActor, "r1", pickup)
	expectFields(t, err, "paymentMethod")

	unavailable := deliveryInput(coords(40.01, -74))
	unavailable.Items = []LineInput{{ProductID: "p2", Quantity: 1}}
	_, err = f.uc.Place(ctx, customerActor, "r1", unavailable)
	expectFields(t, err, "items")
}

func TestOrderUseCasePlacePickupDropsAddress(t *testing.T) {
	f := newOrderFixture(t)

	in := deliveryInput(coords(45, 10))
	in.Type = model.OrderTypePickup
	in.PaymentMethod = model.PaymentMethodCashAtCounter
	order, err := f.uc.Place(context.Background(), customerActor, "r1", in)
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}
	if order.Customer.Address != nil {
		t.Fatalf("pickup kept address %+v", order.Customer.Address)
	}
	if order.DeliveryFee != 0 || order.TotalAmount != 2200 {
		t.Fatalf("unexpected fee %d total %d", order.DeliveryFee, order.TotalAmount)
	}
}

func TestOrderUseCaseQuote(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	q, err := f.uc.Quote(ctx, "r1", QuoteInput{
		Type:    model.OrderTypeDelivery,
		Address: coords(40.01, -74),
		Items:   []LineInput{{ProductID: "p1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("quote returned error: %v", err)
	}
	if !q.Fee.InZone || q.Fee.DistanceKm == nil {
		t.Fatalf("expected in-zone fee with distance, got %+v", q.Fee)
	}
	if math.Abs(*q.Fee.DistanceKm-1.11) > 0.01 {
		t.Fatalf("unexpected distance %.3f", *q.Fee.DistanceKm)
	}
	if q.Totals.Total != 1400 {
		t.Fatalf("unexpected total %d", q.Totals.Total)
	}

	_, err = f.uc.Quote(ctx, "r1", QuoteInput{Type: "drone"})
	expectFields(t, err, "orderType", "items")

	_, err = f.uc.Quote(ctx, "r9", QuoteInput{
		Type:    model.OrderTypeDelivery,
		Address: coords(40.01, -74),
		Items:   []LineInput{{ProductID: "p1", Quantity: 1}},
	})
	expectFields(t, err, "items")
}

func TestOrderUseCaseDeliveryLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.uc.Place(ctx, customerActor, "r1", deliveryInput(coords(40.01, -74)))
	if err != nil {
		t.Fatalf("place returned error: %v", err)
	}

	step := func(actor model.Actor, action string, driver *int64) *OrderDetails {
		t.Helper()
		current, err := f.orders.Get(ctx, "r1", order.ID)
		if err != nil {
			t.Fatalf("load order: %v", err)
		}
		details, err := f.uc.Transition(ctx, actor, "r1", order.ID, TransitionInput{Action: action, DriverID: driver, Version: current.Version})
		if err != nil {
			t.Fatalf("%s returned error: %v", action, err)
		}
		if details.Order.Version != current.Version+1 {
			t.Fatalf("%s: expected version %d, got %d", action, current.Version+1, details.Order.Version)
		}
		return details
	}

	step(adminActor, "accept", nil)
	step(adminActor, "start_preparing", nil)

	wrongDriver := int64(201)
	_, err = f.uc.Transition(ctx, adminActor, "r1", order.ID, TransitionInput{Action: "assign_driver", DriverID: &wrongDriver})
	if !errors.Is(err, domainErrors.ErrInvalidDriver) {
		t.Fatalf("expected ErrInvalidDriver, got %v", err)
	}

	driverID := driverActor.UserID
	assigned := step(adminActor, "assign_driver", &driverID)
	if assigned.Order.Status != model.OrderStatusAssignedForDelivery || assigned.Order.DriverAssignmentStatus != model.AssignmentPending {
		t.Fatalf("unexpected assignment state %s/%s", assigned.Order.Status, assigned.Order.DriverAssignmentStatus)
	}
	if by := assigned.Order.AssignedBy; by == nil || *by != adminActor.UserID {
		t.Fatalf("expected assigned by %d, got %v", adminActor.UserID, by)
	}

	step(driverActor, "driver_accept", nil)
	step(driverActor, "pick_up", nil)
	step(driverActor, "start_delivery", nil)
	delivered := step(driverActor, "deliver", nil)
	if got := delivered.Order.DeliveryStatus(); got != model.DeliveryStatusDelivered {
		t.Fatalf("unexpected delivery status %q", got)
	}

	_, err = f.uc.Transition(ctx, driverActor, "r1", order.ID, TransitionInput{Action: "complete"})
	if !errors.Is(err, domainErrors.ErrPaymentPending) {
		t.Fatalf("expected ErrPaymentPending, got %v", err)
	}

	paid := step(driverActor, "confirm_payment", nil)
	if paid.Order.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Order.PaymentStatus)
	}
	done := step(driverActor, "complete", nil)
	if done.Order.Status != model.OrderStatusCompleted || len(done.Actions) != 0 {
		t.Fatalf("unexpected final state %s actions=%v", done.Order.Status, done.Actions)
	}

	if len(f.orders.Events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(f.orders.Events))
	}
	if f.metrics.rejected != 2 {
		t.Fatalf("expected 2 rejected transitions, got %d", f.metrics.rejected)
	}
}

func TestOrderUseCaseTransitionConflicts(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.orders.Put(model.Order{ID: "o1", RestaurantID: "r1", Status: model.OrderStatusPending, Type: model.OrderTypePickup, Version: 3})

	if _, err := f.uc.Transition(ctx, adminActor, "r1", "o1", TransitionInput{Action: "accept", Version: 2}); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	_, err := f.uc.Transition(ctx, adminActor, "r1", "o1", TransitionInput{Action: "teleport"})
	expectFields(t, err, "action")

	if _, err := f.uc.Transition(ctx, adminActor, "r1", "missing", TransitionInput{Action: "accept"}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.uc.Transition(ctx, customerActor, "r1", "o1", TransitionInput{Action: "accept"}); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	details, err := f.uc.Transition(ctx, adminActor, "r1", "o1", TransitionInput{Action: "accept"})
	if err != nil {
		t.Fatalf("accept without version returned error: %v", err)
	}
	if details.Order.Version != 4 || !details.Order.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected version %d updated %v", details.Order.Version, details.Order.UpdatedAt)
	}
}

func TestOrderUseCaseGetVisibility(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.orders.Put(model.Order{
		ID:           "o1",
		RestaurantID: "r1",
		Customer:     model.Customer{UserID: 1},
		Status:       model.OrderStatusPreparing,
		Type:         model.OrderTypeDelivery,
		Version:      1,
	})

	tests := []struct {
		name  string
		actor model.Actor
		ok    bool
	}{
		{"owner", customerActor, true},
		{"other customer", model.Actor{UserID: 2, Role: model.RoleCustomer}, false},
		{"admin", adminActor, true},
		{"foreign admin", model.Actor{UserID: 101, Role: model.RoleAdmin, RestaurantID: "r2"}, false},
		{"driver sees available", driverActor, true},
		{"foreign driver", model.Actor{UserID: 201, Role: model.RoleDriver, RestaurantID: "r2"}, false},
		{"super admin", model.Actor{UserID: 9, Role: model.RoleSuperAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := f.uc.Get(ctx, tt.actor, "r1", "o1")
			if !tt.ok {
				if !errors.Is(err, domainErrors.ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
				return
			}
			if err != nil || details.Order.ID != "o1" {
				t.Fatalf("unexpected result %+v err=%v", details, err)
			}
		})
	}

	details, err := f.uc.Get(ctx, adminActor, "r1", "o1")
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if !slices.Contains(details.Actions, dispatch.ActionAssignDriver) {
		t.Fatalf("expected assign_driver among %v", details.Actions)
	}
}
