package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(id int, price string, qty int) LineItem {
	return LineItem{ID: id, Name: "item", Price: dec(price), Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s = %s, want %s", field, got, want)
}

func TestCalculate_BelowThreshold(t *testing.T) {
	got := DefaultPricing().Calculate([]LineItem{line(1, "100", 3)})

	assertDecimal(t, "300", got.Subtotal, "subtotal")
	assertDecimal(t, "99.99", got.Shipping, "shipping")
	assertDecimal(t, "24", got.Tax, "tax")
	assertDecimal(t, "423.99", got.Total, "total")
	assert.Equal(t, 3, got.ItemCount)
}

func TestCalculate_Shipping(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		shipping string
	}{
		{"empty cart ships free", nil, "0"},
		{"exactly at threshold", []LineItem{line(1, "500", 1)}, "0"},
		{"one paisa below threshold", []LineItem{line(1, "499.99", 1)}, "99.99"},
		{"above threshold across lines", []LineItem{line(1, "250", 1), line(2, "125.5", 2)}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultPricing().Calculate(tt.items)
			assertDecimal(t, tt.shipping, got.Shipping, "shipping")
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Shipping).Add(got.Tax)))
		})
	}
}

func TestCalculate_EmptyIsAllZero(t *testing.T) {
	got := DefaultPricing().Calculate([]LineItem{})

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
	assert.Equal(t, 0, got.ItemCount)
}

func TestCalculate_TaxIsExact(t *testing.T) {
	got := DefaultPricing().Calculate([]LineItem{line(1, "0.10", 3)})

	assertDecimal(t, "0.3", got.Subtotal, "subtotal")
	assertDecimal(t, "0.024", got.Tax, "tax")
}

func TestProgress(t *testing.T) {
	p := DefaultPricing()

	got := p.Progress(dec("300"))
	assert.False(t, got.Qualified)
	assertDecimal(t, "200", got.Remaining, "remaining")
	assertDecimal(t, "60", got.Percent, "percent")
	assert.Equal(t, "Add ₹200.00 more for free shipping.", got.Message)

	got = p.Progress(dec("500"))
	assert.True(t, got.Qualified)
	assertDecimal(t, "100", got.Percent, "percent")
	assert.Equal(t, "You've qualified for free shipping!", got.Message)

	got = p.Progress(decimal.Zero)
	assert.False(t, got.Qualified)
	assertDecimal(t, "0", got.Percent, "percent")
	assert.Equal(t, "Free shipping on orders over ₹500.", got.Message)
}

func TestPricing_ZeroValueUsesDefaults(t *testing.T) {
	var p Pricing
	assert.True(t, p.isZero())
	assert.Equal(t, DefaultMaxQuantity, p.maxQuantity())
}

func TestCalculate_IsPure(t *testing.T) {
	p := DefaultPricing()
	items := []LineItem{line(1, "100", 3), line(2, "49.95", 2)}
	before := cloneItems(items)

	first := p.Calculate(items)
	second := p.Calculate(items)

	assert.Equal(t, first, second)
	assert.Equal(t, before, items)
}
