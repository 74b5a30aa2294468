// Package projection derives the role-scoped views of a restaurant's orders.
// All functions are pure; callers pass store snapshots and a clock.
package projection

import (
	"sort"
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// AdminBoard groups a restaurant's orders into the admin panel columns.
type AdminBoard struct {
	New       []model.Order
	Preparing []model.Order
	Ready     []model.Order
	InTransit []model.Order
	Closed    []model.Order
}

// BuildAdminBoard places every order into exactly one column, newest first.
func BuildAdminBoard(orders []model.Order) AdminBoard {
	var b AdminBoard
	for _, o := range newestFirst(orders) {
		switch o.Status {
		case model.OrderStatusPending:
			b.New = append(b.New, o)
		case model.OrderStatusAccepted, model.OrderStatusPreparing:
			b.Preparing = append(b.Preparing, o)
		case model.OrderStatusReadyForPickup, model.OrderStatusAssignedForDelivery:
			b.Ready = append(b.Ready, o)
		case model.OrderStatusPickedUp, model.OrderStatusOnTheWay:
			b.InTransit = append(b.InTransit, o)
		default:
			b.Closed = append(b.Closed, o)
		}
	}
	return b
}

// DriverBoard is what a single driver sees.
type DriverBoard struct {
	Available []model.Order
	Mine      []model.Order
}

// BuildDriverBoard filters both lists again so a stale store read cannot leak
// another driver's orders.
func BuildDriverBoard(driverID int64, available, mine []model.Order) DriverBoard {
	var b DriverBoard
	for _, o := range newestFirst(available) {
		if o.Status == model.OrderStatusPreparing && o.Type == model.OrderTypeDelivery && o.AssignedDriverID == nil {
			b.Available = append(b.Available, o)
		}
	}
	for _, o := range newestFirst(mine) {
		if o.IsAssignedTo(driverID) {
			b.Mine = append(b.Mine, o)
		}
	}
	return b
}

// CustomerLabel is the status wording shown to customers.
type CustomerLabel string

const (
	LabelPending        CustomerLabel = "pending"
	LabelPreparing      CustomerLabel = "preparing"
	LabelReadyForPickup CustomerLabel = "ready for pickup"
	LabelOutForDelivery CustomerLabel = "out for delivery"
	LabelCompleted      CustomerLabel = "completed"
	LabelCancelled      CustomerLabel = "cancelled"
	LabelRefunded       CustomerLabel = "refunded"
)

// CustomerLabelOf maps the canonical status to the customer wording.
func CustomerLabelOf(s model.OrderStatus) CustomerLabel {
	switch s {
	case model.OrderStatusPending:
		return LabelPending
	case model.OrderStatusAccepted, model.OrderStatusPreparing:
		return LabelPreparing
	case model.OrderStatusReadyForPickup:
		return LabelReadyForPickup
	case model.OrderStatusAssignedForDelivery, model.OrderStatusPickedUp,
		model.OrderStatusOnTheWay, model.OrderStatusDelivered:
		return LabelOutForDelivery
	case model.OrderStatusCancelled:
		return LabelCancelled
	case model.OrderStatusRefunded:
		return LabelRefunded
	}
	return LabelCompleted
}

// Current reports whether the label belongs to an order still in flight.
func (l CustomerLabel) Current() bool {
	switch l {
	case LabelPending, LabelPreparing, LabelReadyForPickup, LabelOutForDelivery:
		return true
	}
	return false
}

// CustomerOrder pairs an order with its customer label.
type CustomerOrder struct {
	Order model.Order
	Label CustomerLabel
}

// CustomerHistory splits a customer's orders into current and recent ones.
type CustomerHistory struct {
	Current  []CustomerOrder
	Previous []CustomerOrder
}

// HistoryWindow bounds how far back closed orders are shown.
const HistoryWindow = 7 * 24 * time.Hour

// BuildCustomerHistory labels orders; closed ones older than HistoryWindow are dropped.
func BuildCustomerHistory(orders []model.Order, now time.Time) CustomerHistory {
	var h CustomerHistory
	cutoff := now.Add(-HistoryWindow)
	for _, o := range newestFirst(orders) {
		label := CustomerLabelOf(o.Status)
		entry := CustomerOrder{Order: o, Label: label}
		switch {
		case label.Current():
			h.Current = append(h.Current, entry)
		case !o.CreatedAt.Before(cutoff):
			h.Previous = append(h.Previous, entry)
		}
	}
	return h
}

func newestFirst(orders []model.Order) []model.Order {
	out := append([]model.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
