package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"FlashIt/pkg/money"
)

var ErrEmptyCart = errors.New("cart is empty")

// Receipt summarizes a demo checkout. No payment is taken and the cart is
// left as it was.
type Receipt struct {
	Reference string     `json:"reference"`
	Items     []LineItem `json:"items"`
	Totals    Totals     `json:"totals"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Checkout produces a Receipt for the current items. An empty cart raises an
// error notification and returns ErrEmptyCart.
func (c *Cart) Checkout(ctx context.Context) (Receipt, error) {
	items, totals := c.Snapshot()
	if len(items) == 0 {
		c.emit(LevelError, "Your cart is empty!")
		return Receipt{}, ErrEmptyCart
	}

	c.metrics.mutation(opCheckout)
	return Receipt{
		Reference: "chk_" + uuid.NewString(),
		Items:     items,
		Totals:    totals,
		Message: fmt.Sprintf("This is a demo checkout for %d items totaling %s.",
			totals.ItemCount, money.Format(totals.Total)),
		CreatedAt: c.now(),
	}, nil
}
