package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Wednesday.
var now = time.Date(2026, 3, 4, 14, 30, 0, 0, time.UTC)

func order(id string, status model.OrderStatus, created time.Time) model.Order {
	return model.Order{
		ID:        id,
		Type:      model.OrderTypeDelivery,
		Status:    status,
		CreatedAt: created,
		Customer:  model.Customer{Email: id + "@example.com"},
	}
}

func ids(orders []model.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestBuildAdminBoard(t *testing.T) {
	var orders []model.Order
	for i, s := range model.OrderStatuses {
		orders = append(orders, order(string(s), s, now.Add(time.Duration(i)*time.Minute)))
	}
	orders = append(orders, order("pending-old", model.OrderStatusPending, now.Add(-time.Hour)))

	b := BuildAdminBoard(orders)
	assert.Equal(t, []string{"pending", "pending-old"}, ids(b.New))
	assert.Equal(t, []string{"preparing", "accepted"}, ids(b.Preparing))
	assert.Equal(t, []string{"assigned_for_delivery", "ready_for_pickup"}, ids(b.Ready))
	assert.Equal(t, []string{"on_the_way", "picked_up"}, ids(b.InTransit))
	assert.Equal(t, []string{"refunded", "cancelled", "completed", "delivered"}, ids(b.Closed))

	total := len(b.New) + len(b.Preparing) + len(b.Ready) + len(b.InTransit) + len(b.Closed)
	assert.Equal(t, len(orders), total)
}

func TestBuildDriverBoard(t *testing.T) {
	var me, them int64 = 10, 11
	free := order("free", model.OrderStatusPreparing, now)
	pickup := order("pickup", model.OrderStatusPreparing, now)
	pickup.Type = model.OrderTypePickup
	mine := order("mine", model.OrderStatusOnTheWay, now)
	mine.AssignedDriverID = &me
	theirs := order("theirs", model.OrderStatusPickedUp, now)
	theirs.AssignedDriverID = &them

	b := BuildDriverBoard(me, []model.Order{free, pickup, theirs}, []model.Order{mine, theirs})
	assert.Equal(t, []string{"free"}, ids(b.Available))
	assert.Equal(t, []string{"mine"}, ids(b.Mine))
}

func TestCustomerLabels(t *testing.T) {
	want := map[model.OrderStatus]CustomerLabel{
		model.OrderStatusPending:             LabelPending,
		model.OrderStatusAccepted:            LabelPreparing,
		model.OrderStatusPreparing:           LabelPreparing,
		model.OrderStatusReadyForPickup:      LabelReadyForPickup,
		model.OrderStatusAssignedForDelivery: LabelOutForDelivery,
		model.OrderStatusPickedUp:            LabelOutForDelivery,
		model.OrderStatusOnTheWay:            LabelOutForDelivery,
		model.OrderStatusDelivered:           LabelOutForDelivery,
		model.OrderStatusCompleted:           LabelCompleted,
		model.OrderStatusCancelled:           LabelCancelled,
		model.OrderStatusRefunded:            LabelRefunded,
	}
	for _, s := range model.OrderStatuses {
		assert.Equal(t, want[s], CustomerLabelOf(s), s)
	}
}

func TestBuildCustomerHistory(t *testing.T) {
	orders := []model.Order{
		order("new", model.OrderStatusPending, now.Add(-time.Minute)),
		order("moving", model.OrderStatusOnTheWay, now.Add(-30*24*time.Hour)),
		order("done", model.OrderStatusCompleted, now.Add(-6*24*time.Hour)),
		order("stale", model.OrderStatusCancelled, now.Add(-8*24*time.Hour)),
	}

	h := BuildCustomerHistory(orders, now)
	require.Len(t, h.Current, 2)
	assert.Equal(t, "new", h.Current[0].Order.ID)
	assert.Equal(t, LabelPending, h.Current[0].Label)
	assert.Equal(t, LabelOutForDelivery, h.Current[1].Label)
	require.Len(t, h.Previous, 1)
	assert.Equal(t, "done", h.Previous[0].Order.ID)
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev, want float64
	}{
		{cur: 5, prev: 0, want: 100},
		{cur: 0, prev: 0, want: 0},
		{cur: 15, prev: 10, want: 50},
		{cur: 5, prev: 10, want: -50},
		{cur: 1, prev: 3, want: -66.7},
		{cur: 4, prev: 3, want: 33.3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PercentChange(tt.cur, tt.prev), "%v vs %v", tt.cur, tt.prev)
	}
}

func TestPeriods(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	cur, prev := RangeWeek.Periods(now)
	assert.Equal(t, day(2026, 3, 2), cur.Start)
	assert.Equal(t, day(2026, 2, 23), prev.Start)

	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	cur, _ = RangeWeek.Periods(sunday)
	assert.Equal(t, day(2026, 3, 2), cur.Start)

	cur, prev = RangeMonth.Periods(now)
	assert.Equal(t, day(2026, 3, 1), cur.Start)
	assert.Equal(t, day(2026, 2, 1), prev.Start)

	cur, prev = RangeYear.Periods(now)
	assert.Equal(t, day(2026, 1, 1), cur.Start)
	assert.Equal(t, day(2025, 1, 1), prev.Start)

	cur, prev = RangeToday.Periods(now)
	assert.Equal(t, day(2026, 3, 4), cur.Start)
	assert.Equal(t, day(2026, 3, 3), prev.Start)
	assert.Equal(t, cur.Start, prev.End)

	assert.Equal(t, day(2026, 3, 3), RangeToday.Since(now))
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange("")
	assert.True(t, ok)
	assert.Equal(t, RangeToday, r)
	_, ok = ParseRange("decade")
	assert.False(t, ok)
}

func TestBuildDashboard(t *testing.T) {
	completed := func(id string, total model.Amount, created time.Time) model.Order {
		o := order(id, model.OrderStatusCompleted, created)
		o.TotalAmount = total
		return o
	}
	orders := []model.Order{
		completed("a", 30000, now.Add(-10*time.Minute)),
		completed("b", 10000, now.Add(-2*time.Hour)),
		order("c", model.OrderStatusPending, now.Add(-80*time.Minute)),
		completed("y", 20000, now.Add(-20*time.Hour)),
		order("z", model.OrderStatusCancelled, now.Add(-21*time.Hour)),
	}
	orders[2].Customer.Email = "a@example.com"

	d := BuildDashboard(orders, RangeToday, now)
	assert.Equal(t, Count{Current: 3, Previous: 2, ChangePct: 50}, d.Orders)
	assert.Equal(t, Money{Current: 40000, Previous: 20000, ChangePct: 100}, d.Revenue)
	assert.Equal(t, Money{Current: 20000, Previous: 20000, ChangePct: 0}, d.AverageOrderValue)
	// 13:00 onwards: a (twice), before that 12:00-13:00: b.
	assert.Equal(t, Count{Current: 1, Previous: 1, ChangePct: 0}, d.ActiveCustomers)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, RangeMonth, now)
	assert.Zero(t, d.Orders.Current)
	assert.Zero(t, d.AverageOrderValue.Current)
	assert.Zero(t, d.Revenue.ChangePct)
}

func TestPopularItems(t *testing.T) {
	o1 := order("1", model.OrderStatusCompleted, now)
	o1.Items = []model.OrderItem{{ProductID: "dosa", Name: "Dosa", Price: 100, Quantity: 2}, {ProductID: "chai", Name: "Chai", Price: 20, Quantity: 1}}
	o2 := order("2", model.OrderStatusPending, now)
	o2.Items = []model.OrderItem{{ProductID: "chai", Name: "Chai", Price: 20, Quantity: 3}}
	o3 := order("3", model.OrderStatusCancelled, now)
	o3.Items = []model.OrderItem{{ProductID: "dosa", Name: "Dosa", Price: 100, Quantity: 50}}

	got := PopularItems([]model.Order{o1, o2, o3}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, PopularItem{ProductID: "chai", Name: "Chai", Quantity: 4, Revenue: 80}, got[0])

	assert.Len(t, PopularItems([]model.Order{o1, o2, o3}, 0), 2)
}
