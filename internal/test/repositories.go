package test

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless the email is taken or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, user *model.User) error {
	if s.Err != nil {
		return s.Err
	}
	email := strings.ToLower(user.Email)
	if _, exists := s.Users[email]; exists {
		return domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user.ID = s.Next
	user.Email = email
	user.CreatedAt = time.Now().UTC()
	s.Next++
	stored := *user
	s.Users[email] = &stored
	s.ByID[user.ID] = &stored
	return nil
}

// Put stores user as is, e.g. to seed staff accounts.
func (s *UserRepositoryStub) Put(user model.User) {
	stored := user
	s.Users[strings.ToLower(user.Email)] = &stored
	s.ByID[user.ID] = &stored
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[strings.ToLower(email)]; ok {
		u := *user
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

// UpdateRole rewrites role and restaurant of a stored user.
func (s *UserRepositoryStub) UpdateRole(ctx context.Context, id int64, role model.Role, restaurantID string) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Role = role
	user.ManagedRestaurantID = restaurantID
	return nil
}

// ListDrivers returns drivers of restaurantID ordered by id.
func (s *UserRepositoryStub) ListDrivers(ctx context.Context, restaurantID string) ([]model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.User
	for _, u := range s.ByID {
		if u.Role == model.RoleDriver && u.ManagedRestaurantID == restaurantID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderRepositoryStub keeps orders and their outbox events in memory and
// enforces the version check like the real store.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[string]model.Order
	Events []model.OrderEvent
	Err    error
}

// NewOrderRepositoryStub constructs an empty store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[string]model.Order)}
}

// Put seeds an order.
func (s *OrderRepositoryStub) Put(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders[o.ID] = o.Clone()
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order, event model.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.Orders[order.ID]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Orders[order.ID] = order.Clone()
	s.Events = append(s.Events, event)
	return nil
}

func (s *OrderRepositoryStub) Get(ctx context.Context, restaurantID, orderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	o, ok := s.Orders[orderID]
	if !ok || o.RestaurantID != restaurantID {
		return nil, domainErrors.ErrNotFound
	}
	c := o.Clone()
	return &c, nil
}

func (s *OrderRepositoryStub) Update(ctx context.Context, order *model.Order, expectedVersion int64, event model.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	current, ok := s.Orders[order.ID]
	if !ok || current.RestaurantID != order.RestaurantID {
		return domainErrors.ErrNotFound
	}
	if current.Version != expectedVersion {
		return domainErrors.ErrConflict
	}
	s.Orders[order.ID] = order.Clone()
	s.Events = append(s.Events, event)
	return nil
}

func (s *OrderRepositoryStub) ListByRestaurant(ctx context.Context, restaurantID string, filter model.OrderFilter) ([]model.Order, error) {
	out, err := s.list(func(o model.Order) bool {
		if o.RestaurantID != restaurantID {
			return false
		}
		if filter.Status != nil && o.Status != *filter.Status {
			return false
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			return false
		}
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			return false
		}
		return true
	})
	if err == nil && filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, err
}

func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, restaurantID string, userID int64) ([]model.Order, error) {
	return s.list(func(o model.Order) bool {
		return o.RestaurantID == restaurantID && o.Customer.UserID == userID
	})
}

func (s *OrderRepositoryStub) ListAvailableForDrivers(ctx context.Context, restaurantID string) ([]model.Order, error) {
	return s.list(func(o model.Order) bool {
		return o.RestaurantID == restaurantID && o.Status == model.OrderStatusPreparing &&
			o.Type == model.OrderTypeDelivery && o.AssignedDriverID == nil
	})
}

func (s *OrderRepositoryStub) ListByDriver(ctx context.Context, restaurantID string, driverID int64) ([]model.Order, error) {
	return s.list(func(o model.Order) bool {
		return o.RestaurantID == restaurantID && o.IsAssignedTo(driverID)
	})
}

func (s *OrderRepositoryStub) ListCreatedSince(ctx context.Context, restaurantID string, since time.Time) ([]model.Order, error) {
	return s.list(func(o model.Order) bool {
		return o.RestaurantID == restaurantID && !o.CreatedAt.Before(since)
	})
}

// list returns matching orders newest first.
func (s *OrderRepositoryStub) list(match func(model.Order) bool) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Order
	for _, o := range s.Orders {
		if match(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SettingsRepositoryStub stores settings per restaurant.
type SettingsRepositoryStub struct {
	Invoice  map[string]model.InvoiceSettings
	Delivery map[string]model.DeliverySettings
	Err      error
	Reads    int
}

// NewSettingsRepositoryStub constructs an empty store.
func NewSettingsRepositoryStub() *SettingsRepositoryStub {
	return &SettingsRepositoryStub{
		Invoice:  make(map[string]model.InvoiceSettings),
		Delivery: make(map[string]model.DeliverySettings),
	}
}

func (s *SettingsRepositoryStub) GetInvoice(ctx context.Context, restaurantID string) (*model.InvoiceSettings, error) {
	s.Reads++
	if s.Err != nil {
		return nil, s.Err
	}
	v, ok := s.Invoice[restaurantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &v, nil
}

func (s *SettingsRepositoryStub) SaveInvoice(ctx context.Context, settings model.InvoiceSettings) error {
	if s.Err != nil {
		return s.Err
	}
	s.Invoice[settings.RestaurantID] = settings
	return nil
}

func (s *SettingsRepositoryStub) GetDelivery(ctx context.Context, restaurantID string) (*model.DeliverySettings, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	v, ok := s.Delivery[restaurantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &v, nil
}

func (s *SettingsRepositoryStub) SaveDelivery(ctx context.Context, settings model.DeliverySettings) error {
	if s.Err != nil {
		return s.Err
	}
	s.Delivery[settings.RestaurantID] = settings
	return nil
}

// SettingsCacheStub is an in-memory settings cache with generation stamps.
type SettingsCacheStub struct {
	Items       map[string]model.Settings
	Stamps      map[string]int64
	Generations map[string]int64
	GetErr      error
	Invalidated []string
}

// NewSettingsCacheStub constructs an empty cache.
func NewSettingsCacheStub() *SettingsCacheStub {
	return &SettingsCacheStub{
		Items:       make(map[string]model.Settings),
		Stamps:      make(map[string]int64),
		Generations: make(map[string]int64),
	}
}

func (c *SettingsCacheStub) Get(ctx context.Context, restaurantID string) (*model.Settings, int64, error) {
	if c.GetErr != nil {
		return nil, 0, c.GetErr
	}
	gen := c.Generations[restaurantID]
	v, ok := c.Items[restaurantID]
	if !ok || c.Stamps[restaurantID] != gen {
		return nil, gen, domainErrors.ErrCacheMiss
	}
	return &v, gen, nil
}

func (c *SettingsCacheStub) Set(ctx context.Context, settings model.Settings, generation int64) error {
	c.Items[settings.Invoice.RestaurantID] = settings
	c.Stamps[settings.Invoice.RestaurantID] = generation
	return nil
}

func (c *SettingsCacheStub) Invalidate(ctx context.Context, restaurantID string) error {
	c.Generations[restaurantID]++
	delete(c.Items, restaurantID)
	delete(c.Stamps, restaurantID)
	c.Invalidated = append(c.Invalidated, restaurantID)
	return nil
}

// ProductRepositoryStub stores products in memory.
type ProductRepositoryStub struct {
	Items map[string]model.Product
	Err   error
}

// NewProductRepositoryStub constructs stub seeded with products.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{Items: make(map[string]model.Product)}
	for _, p := range products {
		s.Items[p.RestaurantID+"/"+p.ID] = p
	}
	return s
}

func (s *ProductRepositoryStub) Create(ctx context.Context, product *model.Product) error {
	if s.Err != nil {
		return s.Err
	}
	key := product.RestaurantID + "/" + product.ID
	if _, ok := s.Items[key]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Items[key] = *product
	return nil
}

func (s *ProductRepositoryStub) Update(ctx context.Context, product *model.Product) error {
	if s.Err != nil {
		return s.Err
	}
	key := product.RestaurantID + "/" + product.ID
	if _, ok := s.Items[key]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Items[key] = *product
	return nil
}

func (s *ProductRepositoryStub) Get(ctx context.Context, restaurantID, productID string) (*model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Items[restaurantID+"/"+productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (s *ProductRepositoryStub) List(ctx context.Context, restaurantID string) ([]model.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Product
	for _, p := range s.Items {
		if p.RestaurantID == restaurantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CouponRepositoryStub stores coupons in memory.
type CouponRepositoryStub struct {
	Items map[string]model.Coupon
	Err   error
}

// NewCouponRepositoryStub constructs an empty store.
func NewCouponRepositoryStub() *CouponRepositoryStub {
	return &CouponRepositoryStub{Items: make(map[string]model.Coupon)}
}

func (s *CouponRepositoryStub) Create(ctx context.Context, coupon *model.Coupon) error {
	if s.Err != nil {
		return s.Err
	}
	key := coupon.RestaurantID + "/" + coupon.Code
	if _, ok := s.Items[key]; ok {
		return domainErrors.ErrAlreadyExists
	}
	s.Items[key] = *coupon
	return nil
}

func (s *CouponRepositoryStub) Update(ctx context.Context, coupon *model.Coupon) error {
	if s.Err != nil {
		return s.Err
	}
	key := coupon.RestaurantID + "/" + coupon.Code
	if _, ok := s.Items[key]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Items[key] = *coupon
	return nil
}

func (s *CouponRepositoryStub) Delete(ctx context.Context, restaurantID, code string) error {
	if s.Err != nil {
		return s.Err
	}
	key := restaurantID + "/" + code
	if _, ok := s.Items[key]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Items, key)
	return nil
}

func (s *CouponRepositoryStub) Get(ctx context.Context, restaurantID, code string) (*model.Coupon, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.Items[restaurantID+"/"+code]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

func (s *CouponRepositoryStub) List(ctx context.Context, restaurantID string) ([]model.Coupon, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Coupon
	for _, c := range s.Items {
		if c.RestaurantID == restaurantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// EventRepositoryStub serves a fixed queue of outbox events.
type EventRepositoryStub struct {
	mu        sync.Mutex
	Pending   []model.OrderEvent
	Published []string
	Released  []string
	ClaimErr  error
}

func (s *EventRepositoryStub) ClaimUnpublished(ctx context.Context, limit int) ([]model.OrderEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClaimErr != nil {
		return nil, s.ClaimErr
	}
	n := limit
	if n > len(s.Pending) {
		n = len(s.Pending)
	}
	out := append([]model.OrderEvent(nil), s.Pending[:n]...)
	s.Pending = s.Pending[n:]
	return out, nil
}

func (s *EventRepositoryStub) MarkPublished(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Published = append(s.Published, ids...)
	return nil
}

func (s *EventRepositoryStub) Release(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Released = append(s.Released, ids...)
	return nil
}

// Snapshot returns published and released ids under lock.
func (s *EventRepositoryStub) Snapshot() (published, released []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Published...), append([]string(nil), s.Released...)
}

var (
	_ repository.UserRepository     = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository    = (*OrderRepositoryStub)(nil)
	_ repository.EventRepository    = (*EventRepositoryStub)(nil)
	_ repository.SettingsRepository = (*SettingsRepositoryStub)(nil)
	_ repository.SettingsCache      = (*SettingsCacheStub)(nil)
	_ repository.ProductRepository  = (*ProductRepositoryStub)(nil)
	_ repository.CouponRepository   = (*CouponRepositoryStub)(nil)
)
