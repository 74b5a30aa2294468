// Package dispatch holds the order lifecycle policy: which actor may move an
// order from one state to another and what each move does to driver and
// payment fields. Everything here is pure; persistence lives elsewhere.
package dispatch

import (
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Action is a named transition request.
type Action string

const (
	ActionAccept            Action = "accept"
	ActionStartPreparing    Action = "start_preparing"
	ActionMarkReady         Action = "mark_ready"
	ActionAssignDriver      Action = "assign_driver"
	ActionReassignDriver    Action = "reassign_driver"
	ActionRevertToPreparing Action = "revert_to_preparing"
	ActionCancel            Action = "cancel"
	ActionRefund            Action = "refund"
	ActionComplete          Action = "complete"
	ActionDriverAccept      Action = "driver_accept"
	ActionDriverReject      Action = "driver_reject"
	ActionPickUp            Action = "pick_up"
	ActionStartDelivery     Action = "start_delivery"
	ActionDeliver           Action = "deliver"
	ActionConfirmPayment    Action = "confirm_payment"
)

// Actions lists every action in the order they are offered to clients.
var Actions = []Action{
	ActionAccept,
	ActionStartPreparing,
	ActionMarkReady,
	ActionAssignDriver,
	ActionReassignDriver,
	ActionRevertToPreparing,
	ActionDriverAccept,
	ActionDriverReject,
	ActionPickUp,
	ActionStartDelivery,
	ActionDeliver,
	ActionConfirmPayment,
	ActionComplete,
	ActionCancel,
	ActionRefund,
}

// Request carries the action and its arguments.
type Request struct {
	Action   Action
	DriverID *int64
}

type rule struct {
	admin  []model.OrderStatus
	driver []model.OrderStatus
	// driver actions other than accept/reject need an accepted assignment
	needsAcceptance bool
	guard           func(o *model.Order) error
	apply           func(o *model.Order, actor model.Actor, req Request) error
}

var (
	inTransit  = []model.OrderStatus{model.OrderStatusAssignedForDelivery, model.OrderStatusPickedUp, model.OrderStatusOnTheWay}
	nonClosed  = model.OpenStatuses()
	driverLive = []model.OrderStatus{model.OrderStatusAssignedForDelivery, model.OrderStatusPickedUp, model.OrderStatusOnTheWay, model.OrderStatusDelivered}
)

var rules = map[Action]rule{
	ActionAccept: {
		admin: []model.OrderStatus{model.OrderStatusPending},
		apply: moveTo(model.OrderStatusAccepted),
	},
	ActionStartPreparing: {
		admin: []model.OrderStatus{model.OrderStatusAccepted},
		apply: moveTo(model.OrderStatusPreparing),
	},
	ActionMarkReady: {
		admin: []model.OrderStatus{model.OrderStatusPreparing},
		guard: requireType(model.OrderTypePickup),
		apply: moveTo(model.OrderStatusReadyForPickup),
	},
	ActionAssignDriver: {
		admin: []model.OrderStatus{model.OrderStatusPreparing},
		guard: func(o *model.Order) error {
			if err := requireType(model.OrderTypeDelivery)(o); err != nil {
				return err
			}
			if o.AssignedDriverID != nil {
				return fmt.Errorf("%w: driver already assigned", domainErrors.ErrIllegalTransition)
			}
			return nil
		},
		apply: assign,
	},
	ActionReassignDriver: {
		admin: inTransit,
		apply: func(o *model.Order, actor model.Actor, req Request) error {
			if req.DriverID != nil && o.IsAssignedTo(*req.DriverID) {
				return fmt.Errorf("%w: driver already assigned", domainErrors.ErrIllegalTransition)
			}
			return assign(o, actor, req)
		},
	},
	ActionRevertToPreparing: {
		admin: inTransit,
		apply: func(o *model.Order, _ model.Actor, _ Request) error {
			o.Status = model.OrderStatusPreparing
			o.ClearAssignment()
			o.PaymentReceivedByDriver = false
			return nil
		},
	},
	ActionCancel: {
		admin: nonClosed,
		apply: closeOrder(model.OrderStatusCancelled),
	},
	ActionRefund: {
		admin: nonClosed,
		apply: closeOrder(model.OrderStatusRefunded),
	},
	ActionComplete: {
		admin:           []model.OrderStatus{model.OrderStatusReadyForPickup, model.OrderStatusDelivered},
		driver:          []model.OrderStatus{model.OrderStatusDelivered},
		needsAcceptance: true,
		guard: func(o *model.Order) error {
			if o.PaymentMethod == model.PaymentMethodCashOnDelivery && !o.PaymentReceivedByDriver {
				return domainErrors.ErrPaymentPending
			}
			return nil
		},
		apply: func(o *model.Order, _ model.Actor, _ Request) error {
			o.Status = model.OrderStatusCompleted
			if o.PaymentMethod == model.PaymentMethodCashAtCounter {
				o.PaymentStatus = model.PaymentStatusPaid
			}
			return nil
		},
	},
	ActionDriverAccept: {
		driver: []model.OrderStatus{model.OrderStatusAssignedForDelivery},
		guard:  requireAssignment(model.AssignmentPending),
		apply: func(o *model.Order, _ model.Actor, _ Request) error {
			o.DriverAssignmentStatus = model.AssignmentAccepted
			return nil
		},
	},
	ActionDriverReject: {
		driver: []model.OrderStatus{model.OrderStatusAssignedForDelivery},
		guard:  requireAssignment(model.AssignmentPending),
		apply: func(o *model.Order, _ model.Actor, _ Request) error {
			o.DriverAssignmentStatus = model.AssignmentRejected
			o.AssignedDriverID = nil
			o.Status = model.OrderStatusPreparing
			return nil
		},
	},
	ActionPickUp: {
		driver:          []model.OrderStatus{model.OrderStatusAssignedForDelivery},
		needsAcceptance: true,
		apply:           moveTo(model.OrderStatusPickedUp),
	},
	ActionStartDelivery: {
		driver:          []model.OrderStatus{model.OrderStatusPickedUp},
		needsAcceptance: true,
		apply:           moveTo(model.OrderStatusOnTheWay),
	},
	ActionDeliver: {
		driver:          []model.OrderStatus{model.OrderStatusOnTheWay},
		needsAcceptance: true,
		apply:           moveTo(model.OrderStatusDelivered),
	},
	ActionConfirmPayment: {
		driver:          driverLive,
		needsAcceptance: true,
		guard: func(o *model.Order) error {
			if o.PaymentMethod != model.PaymentMethodCashOnDelivery {
				return fmt.Errorf("%w: order is not cash on delivery", domainErrors.ErrIllegalTransition)
			}
			if o.PaymentReceivedByDriver {
				return fmt.Errorf("%w: payment already confirmed", domainErrors.ErrIllegalTransition)
			}
			return nil
		},
		apply: func(o *model.Order, _ model.Actor, _ Request) error {
			o.PaymentReceivedByDriver = true
			o.PaymentStatus = model.PaymentStatusPaid
			return nil
		},
	},
}

// ParseAction validates a client supplied action name.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := rules[a]
	return a, ok
}

// Apply validates req against the current order and actor and returns the
// mutated copy. The input order is never modified.
func Apply(order model.Order, actor model.Actor, req Request, now time.Time) (model.Order, error) {
	r, ok := rules[req.Action]
	if !ok {
		return order, fmt.Errorf("%w: unknown action %q", domainErrors.ErrIllegalTransition, req.Action)
	}
	if err := check(&order, actor, req.Action, r); err != nil {
		return order, err
	}

	next := order.Clone()
	if err := r.apply(&next, actor, req); err != nil {
		return order, err
	}
	next.UpdatedAt = now
	next.Version++
	return next, nil
}

// Allowed returns the actions actor may currently request on order.
func Allowed(order model.Order, actor model.Actor) []Action {
	var out []Action
	for _, a := range Actions {
		if check(&order, actor, a, rules[a]) == nil {
			out = append(out, a)
		}
	}
	return out
}

func check(o *model.Order, actor model.Actor, action Action, r rule) error {
	var from []model.OrderStatus
	switch {
	case len(r.admin) > 0 && actor.IsAdmin(o.RestaurantID):
		from = r.admin
	case len(r.driver) > 0 && actor.IsDriverOf(o.RestaurantID) && o.IsAssignedTo(actor.UserID):
		if r.needsAcceptance && o.DriverAssignmentStatus != model.AssignmentAccepted {
			return fmt.Errorf("%w: assignment not accepted", domainErrors.ErrIllegalTransition)
		}
		from = r.driver
	default:
		return fmt.Errorf("%w: %s not permitted for %s", domainErrors.ErrForbidden, action, actor.Role)
	}

	if !contains(from, o.Status) {
		return fmt.Errorf("%w: %s from %s", domainErrors.ErrIllegalTransition, action, o.Status)
	}
	if r.guard != nil {
		return r.guard(o)
	}
	return nil
}

func moveTo(status model.OrderStatus) func(*model.Order, model.Actor, Request) error {
	return func(o *model.Order, _ model.Actor, _ Request) error {
		o.Status = status
		return nil
	}
}

func closeOrder(status model.OrderStatus) func(*model.Order, model.Actor, Request) error {
	return func(o *model.Order, _ model.Actor, _ Request) error {
		o.Status = status
		o.ClearAssignment()
		o.PaymentReceivedByDriver = false
		if status == model.OrderStatusRefunded {
			o.PaymentStatus = model.PaymentStatusRefunded
		}
		return nil
	}
}

func assign(o *model.Order, actor model.Actor, req Request) error {
	if req.DriverID == nil || *req.DriverID <= 0 {
		return domainErrors.ErrDriverRequired
	}
	driver := *req.DriverID
	by := actor.UserID
	o.AssignedDriverID = &driver
	o.AssignedBy = &by
	o.DriverAssignmentStatus = model.AssignmentPending
	o.PaymentReceivedByDriver = false
	o.Status = model.OrderStatusAssignedForDelivery
	return nil
}

func requireType(t model.OrderType) func(*model.Order) error {
	return func(o *model.Order) error {
		if o.Type != t {
			return fmt.Errorf("%w: requires %s order", domainErrors.ErrIllegalTransition, t)
		}
		return nil
	}
}

func requireAssignment(s model.DriverAssignmentStatus) func(*model.Order) error {
	return func(o *model.Order) error {
		if o.DriverAssignmentStatus != s {
			return fmt.Errorf("%w: assignment is %q", domainErrors.ErrIllegalTransition, o.DriverAssignmentStatus)
		}
		return nil
	}
}

func contains(list []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
