package zone

import "github.com/polkiloo/dispatch/internal/domain/model"

// Totals is the priced breakdown of an order.
type Totals struct {
	Subtotal    model.Amount
	TaxAmount   model.Amount
	DeliveryFee model.Amount
	Total       model.Amount
}

// Price sums the lines, applies taxRate to the subtotal and adds fee.
func Price(items []model.OrderItem, taxRate float64, fee model.Amount) Totals {
	var subtotal model.Amount
	for _, it := range items {
		subtotal += it.Subtotal()
	}
	tax := subtotal.MulRate(taxRate)
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		DeliveryFee: fee,
		Total:       subtotal + tax + fee,
	}
}

// Apply copies the totals onto o.
func (t Totals) Apply(o *model.Order, taxRate float64) {
	o.Subtotal = t.Subtotal
	o.TaxRate = taxRate
	o.TaxAmount = t.TaxAmount
	o.DeliveryFee = t.DeliveryFee
	o.TotalAmount = t.Total
}
