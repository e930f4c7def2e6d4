package checkout

import "github.com/shopspring/decimal"

// Totals are derived from the cart and the discount on every read; they are
// never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Price computes subtotal = Σ quantity × unit price and
// total = max(subtotal − discount, 0). Discount reports the amount actually
// applied, so Subtotal − Discount == Total always holds.
func Price(c Cart, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	subtotal = subtotal.Round(2)

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	applied := decimal.Min(discount.Round(2), subtotal)

	return Totals{
		Subtotal: subtotal,
		Discount: applied,
		Total:    subtotal.Sub(applied),
	}
}
