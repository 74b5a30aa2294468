package model

import "time"

// OrderStatus is the single canonical lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusAccepted            OrderStatus = "accepted"
	OrderStatusPreparing           OrderStatus = "preparing"
	OrderStatusReadyForPickup      OrderStatus = "ready_for_pickup"
	OrderStatusAssignedForDelivery OrderStatus = "assigned_for_delivery"
	OrderStatusPickedUp            OrderStatus = "picked_up"
	OrderStatusOnTheWay            OrderStatus = "on_the_way"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusRefunded            OrderStatus = "refunded"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusAssignedForDelivery,
	OrderStatusPickedUp,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OpenStatuses lists the statuses from which an order can still move.
func OpenStatuses() []OrderStatus {
	return statusesWhere(func(s OrderStatus) bool { return !s.Terminal() })
}

// TerminalStatuses lists the closed statuses.
func TerminalStatuses() []OrderStatus {
	return statusesWhere(OrderStatus.Terminal)
}

func statusesWhere(keep func(OrderStatus) bool) []OrderStatus {
	var out []OrderStatus
	for _, s := range OrderStatuses {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// DeliveryStatus describes physical fulfilment; derived from OrderStatus.
type DeliveryStatus string

const (
	DeliveryStatusNone      DeliveryStatus = ""
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCompleted DeliveryStatus = "completed"
)

// OrderType is fixed at creation.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// PaymentMethod describes how the customer settles the order.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodCashAtCounter  PaymentMethod = "cash_at_counter"
	PaymentMethodPrepaid        PaymentMethod = "prepaid"
)

// PaymentStatus describes settlement state.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DriverAssignmentStatus tracks the driver's response to an assignment.
type DriverAssignmentStatus string

const (
	AssignmentNone     DriverAssignmentStatus = ""
	AssignmentPending  DriverAssignmentStatus = "pending"
	AssignmentAccepted DriverAssignmentStatus = "accepted_by_driver"
	AssignmentRejected DriverAssignmentStatus = "rejected_by_driver"
)

// Address is an optional customer delivery address.
type Address struct {
	Street  string
	Line2   string
	City    string
	ZipCode string
	Country string
	Lat     *float64
	Lng     *float64
	Notes   string
}

// HasCoordinates reports whether the address was geocoded.
func (a *Address) HasCoordinates() bool {
	return a != nil && a.Lat != nil && a.Lng != nil
}

// Customer identifies who placed the order.
type Customer struct {
	UserID  int64
	Name    string
	Email   string
	Phone   string
	Address *Address
}

// OrderItem is an immutable line of an order.
type OrderItem struct {
	ProductID string
	Name      string
	Price     Amount
	Quantity  int
}

// Subtotal returns price multiplied by quantity.
func (i OrderItem) Subtotal() Amount {
	return i.Price * Amount(i.Quantity)
}

// Order is the persisted order document.
type Order struct {
	ID           string
	RestaurantID string
	Customer     Customer
	Items        []OrderItem

	Subtotal    Amount
	TaxRate     float64
	TaxAmount   Amount
	DeliveryFee Amount
	TotalAmount Amount

	Type          OrderType
	Status        OrderStatus
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus

	AssignedDriverID        *int64
	DriverAssignmentStatus  DriverAssignmentStatus
	AssignedBy              *int64
	PaymentReceivedByDriver bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeliveryStatus derives fulfilment progress from the canonical status.
func (o *Order) DeliveryStatus() DeliveryStatus {
	if o.Type != OrderTypeDelivery {
		return DeliveryStatusNone
	}
	switch o.Status {
	case OrderStatusPickedUp:
		return DeliveryStatusPickedUp
	case OrderStatusOnTheWay:
		return DeliveryStatusOnTheWay
	case OrderStatusDelivered:
		return DeliveryStatusDelivered
	case OrderStatusCompleted:
		return DeliveryStatusCompleted
	}
	return DeliveryStatusNone
}

// IsAssignedTo reports whether the driver currently holds the order.
func (o *Order) IsAssignedTo(driverID int64) bool {
	return o.AssignedDriverID != nil && *o.AssignedDriverID == driverID
}

// ClearAssignment drops all driver related state.
func (o *Order) ClearAssignment() {
	o.AssignedDriverID = nil
	o.DriverAssignmentStatus = AssignmentNone
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.Customer.Address != nil {
		addr := *o.Customer.Address
		c.Customer.Address = &addr
	}
	if o.AssignedDriverID != nil {
		id := *o.AssignedDriverID
		c.AssignedDriverID = &id
	}
	if o.AssignedBy != nil {
		id := *o.AssignedBy
		c.AssignedBy = &id
	}
	return c
}

// OrderFilter narrows restaurant order listings. Statuses, when set,
// restricts the listing to any of the given statuses.
type OrderFilter struct {
	Status   *OrderStatus
	Statuses []OrderStatus
	From     *time.Time
	To       *time.Time
	Limit    int
}
