package projection

import (
	"math"
	"sort"
	"time"

	"github.com/polkiloo/dispatch/internal/domain/model"
)

// Range selects the dashboard comparison period.
type Range string

const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// ParseRange accepts a range name, defaulting to today when empty.
func ParseRange(s string) (Range, bool) {
	switch r := Range(s); r {
	case "":
		return RangeToday, true
	case RangeToday, RangeWeek, RangeMonth, RangeYear:
		return r, true
	}
	return "", false
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Periods returns the current period containing now and the one before it.
// Weeks start on Monday.
func (r Range) Periods(now time.Time) (current, previous Window) {
	y, m, d := now.Date()
	loc := now.Location()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch r {
	case RangeWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return Window{start, start.AddDate(0, 0, 7)}, Window{start.AddDate(0, 0, -7), start}
	case RangeMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Window{start, start.AddDate(0, 1, 0)}, Window{start.AddDate(0, -1, 0), start}
	case RangeYear:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return Window{start, start.AddDate(1, 0, 0)}, Window{start.AddDate(-1, 0, 0), start}
	}
	return Window{day, day.AddDate(0, 0, 1)}, Window{day.AddDate(0, 0, -1), day}
}

// ActiveWindows returns the window from the start of the previous hour up to
// now and the hour before that.
func ActiveWindows(now time.Time) (current, previous Window) {
	start := startOfHour(now.Add(-time.Hour))
	return Window{start, now.Add(time.Nanosecond)}, Window{startOfHour(now.Add(-2 * time.Hour)), start}
}

func startOfHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// Since returns the earliest creation time the dashboard needs for r.
func (r Range) Since(now time.Time) time.Time {
	_, prev := r.Periods(now)
	_, hourPrev := ActiveWindows(now)
	if hourPrev.Start.Before(prev.Start) {
		return hourPrev.Start
	}
	return prev.Start
}

// Count compares a counted quantity between two periods.
type Count struct {
	Current   int
	Previous  int
	ChangePct float64
}

// Money compares a monetary quantity between two periods.
type Money struct {
	Current   model.Amount
	Previous  model.Amount
	ChangePct float64
}

// Dashboard is the admin metrics panel.
type Dashboard struct {
	Range             Range
	Orders            Count
	Revenue           Money
	AverageOrderValue Money
	ActiveCustomers   Count
}

// PercentChange is (cur-prev)/prev*100 rounded to one decimal. A zero previous
// value yields 100 when cur is positive and 0 otherwise.
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return math.Round((cur-prev)/prev*1000) / 10
}

type periodTotals struct {
	orders    int
	completed int
	revenue   model.Amount
}

func (p periodTotals) average() model.Amount {
	if p.completed == 0 {
		return 0
	}
	return model.AmountFromFloat(p.revenue.Float() / float64(p.completed))
}

// BuildDashboard computes the metrics for r from orders created since r.Since(now).
func BuildDashboard(orders []model.Order, r Range, now time.Time) Dashboard {
	cur, prev := r.Periods(now)
	hourCur, hourPrev := ActiveWindows(now)

	var c, p periodTotals
	activeCur := map[string]struct{}{}
	activePrev := map[string]struct{}{}

	for _, o := range orders {
		var t *periodTotals
		switch {
		case cur.Contains(o.CreatedAt):
			t = &c
		case prev.Contains(o.CreatedAt):
			t = &p
		}
		if t != nil {
			t.orders++
			if o.Status == model.OrderStatusCompleted {
				t.completed++
				t.revenue += o.TotalAmount
			}
		}

		if o.Customer.Email == "" {
			continue
		}
		switch {
		case hourCur.Contains(o.CreatedAt):
			activeCur[o.Customer.Email] = struct{}{}
		case hourPrev.Contains(o.CreatedAt):
			activePrev[o.Customer.Email] = struct{}{}
		}
	}

	return Dashboard{
		Range: r,
		Orders: Count{
			Current:   c.orders,
			Previous:  p.orders,
			ChangePct: PercentChange(float64(c.orders), float64(p.orders)),
		},
		Revenue: Money{
			Current:   c.revenue,
			Previous:  p.revenue,
			ChangePct: PercentChange(float64(c.revenue), float64(p.revenue)),
		},
		AverageOrderValue: Money{
			Current:   c.average(),
			Previous:  p.average(),
			ChangePct: PercentChange(float64(c.average()), float64(p.average())),
		},
		ActiveCustomers: Count{
			Current:   len(activeCur),
			Previous:  len(activePrev),
			ChangePct: PercentChange(float64(len(activeCur)), float64(len(activePrev))),
		},
	}
}

// PopularItem aggregates sold quantity of one product.
type PopularItem struct {
	ProductID string
	Name      string
	Quantity  int
	Revenue   model.Amount
}

// PopularItems returns the top n products by quantity across orders that were
// not cancelled or refunded. n <= 0 returns all.
func PopularItems(orders []model.Order, n int) []PopularItem {
	byKey := map[string]*PopularItem{}
	for _, o := range orders {
		if o.Status == model.OrderStatusCancelled || o.Status == model.OrderStatusRefunded {
			continue
		}
		for _, it := range o.Items {
			key := it.ProductID
			if key == "" {
				key = "name:" + it.Name
			}
			p, ok := byKey[key]
			if !ok {
				p = &PopularItem{ProductID: it.ProductID, Name: it.Name}
				byKey[key] = p
			}
			p.Quantity += it.Quantity
			p.Revenue += it.Subtotal()
		}
	}

	out := make([]PopularItem, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
