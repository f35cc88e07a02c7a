package domain

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// LineAmount prices a single order line:
//
//	quantity × price × (1 + wTax + dTax) × (1 − discount)
//
// rounded half-up to two decimal places.
func LineAmount(quantity int, price, wTax, dTax, discount decimal.Decimal) decimal.Decimal {
	amount := decimal.NewFromInt(int64(quantity)).
		Mul(price).
		Mul(one.Add(wTax).Add(dTax)).
		Mul(one.Sub(discount))
	return amount.Round(2)
}

// TotalAmount aggregates the order total from the sum of already-priced line
// amounts. The (1 − discount)(1 + wTax + dTax) factor is applied again on top
// of the per-line adjustment; that doubling is the reference benchmark's
// documented output and is kept for compatibility.
func TotalAmount(lineSum, wTax, dTax, discount decimal.Decimal) decimal.Decimal {
	return lineSum.
		Mul(one.Sub(discount)).
		Mul(one.Add(wTax).Add(dTax)).
		Round(2)
}
