// Package money formats storefront amounts. Arithmetic stays in
// decimal.Decimal; rounding happens only here, at display time.
package money

import "github.com/shopspring/decimal"

const Symbol = "₹"

var hundred = decimal.NewFromInt(100)

// Format renders d with two decimals, e.g. ₹1499.99.
func Format(d decimal.Decimal) string {
	return Symbol + d.StringFixed(2)
}

// Percent returns part/whole*100 rounded to two decimals; a zero whole
// yields 100.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return hundred
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
