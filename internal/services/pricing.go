package services

import "github.com/shopspring/decimal"

// Pricing rules. Amounts are in the store's currency minor-unit-consistent
// decimal form; rounding is half-up to 2 places everywhere.
var (
	freeShippingOver = decimal.NewFromInt(500)
	flatShipping     = decimal.NewFromInt(50)
	taxRate          = decimal.RequireFromString("0.05")
	totalTolerance   = decimal.RequireFromString("0.01")
)

type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeBreakdown derives the authoritative pricing decomposition. Pure:
// same inputs always produce the same breakdown.
func ComputeBreakdown(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal) Breakdown {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate)
	total := subtotal.Add(shipping).Add(tax).Sub(discount).Round(2)

	return Breakdown{
		Subtotal: subtotal.Round(2),
		Shipping: shipping,
		Tax:      tax.Round(2),
		Discount: discount.Round(2),
		Total:    total,
	}
}

// Reconcile compares the client-asserted total against the server-computed
// one. Absolute tolerance of 0.01 absorbs client-side float rounding;
// anything beyond that fails closed.
func Reconcile(clientTotal, computedTotal decimal.Decimal) bool {
	return clientTotal.Sub(computedTotal).Abs().LessThanOrEqual(totalTolerance)
}
