package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"FlashIt/pkg/money"
)

const DefaultMaxQuantity = 99

// Pricing holds the store-wide constants used to derive totals.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingCost          decimal.Decimal
	// MaxQuantity caps UpdateQuantity. AddItem is not capped.
	MaxQuantity int
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.NewFromInt(500),
		ShippingCost:          decimal.RequireFromString("99.99"),
		MaxQuantity:           DefaultMaxQuantity,
	}
}

func (p Pricing) isZero() bool {
	return p.TaxRate.IsZero() && p.FreeShippingThreshold.IsZero() && p.ShippingCost.IsZero() && p.MaxQuantity == 0
}

func (p Pricing) maxQuantity() int {
	if p.MaxQuantity < 1 {
		return DefaultMaxQuantity
	}
	return p.MaxQuantity
}

// Totals are derived from the line items on every read and never stored.
// Amounts are exact; rounding is left to display.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Calculate derives totals from items. Shipping is waived when the subtotal
// is zero or reaches the free-shipping threshold.
func (p Pricing) Calculate(items []LineItem) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
		count += it.Quantity
	}

	shipping := p.ShippingCost
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(p.TaxRate)

	return Totals{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
		ItemCount: count,
	}
}

// ShippingProgress describes how far a subtotal is from free shipping.
type ShippingProgress struct {
	Qualified bool            `json:"qualified"`
	Remaining decimal.Decimal `json:"remaining"`
	Percent   decimal.Decimal `json:"percent"`
	Message   string          `json:"message"`
}

func (p Pricing) Progress(subtotal decimal.Decimal) ShippingProgress {
	switch {
	case subtotal.GreaterThanOrEqual(p.FreeShippingThreshold):
		return ShippingProgress{
			Qualified: true,
			Remaining: decimal.Zero,
			Percent:   decimal.NewFromInt(100),
			Message:   "You've qualified for free shipping!",
		}
	case subtotal.IsPositive():
		remaining := p.FreeShippingThreshold.Sub(subtotal)
		return ShippingProgress{
			Remaining: remaining,
			Percent:   money.Percent(subtotal, p.FreeShippingThreshold),
			Message:   fmt.Sprintf("Add %s more for free shipping.", money.Format(remaining)),
		}
	default:
		return ShippingProgress{
			Remaining: p.FreeShippingThreshold,
			Percent:   decimal.Zero,
			Message:   fmt.Sprintf("Free shipping on orders over %s%s.", money.Symbol, p.FreeShippingThreshold.String()),
		}
	}
}
