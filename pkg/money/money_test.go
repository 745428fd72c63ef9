package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "₹423.99", Format(decimal.RequireFromString("423.99")))
	assert.Equal(t, "₹24.00", Format(decimal.NewFromInt(24)))
	assert.Equal(t, "₹0.33", Format(decimal.NewFromInt(1).Div(decimal.NewFromInt(3))))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "60", Percent(decimal.NewFromInt(300), decimal.NewFromInt(500)).String())
	assert.Equal(t, "100", Percent(decimal.NewFromInt(1), decimal.Zero).String())
}
