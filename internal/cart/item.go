package cart

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the cart. Name, Price and Image are the values
// supplied when the product was first added; they are never re-read from the
// catalog.
type LineItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"addedAt"`
}

func (it LineItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// NewItem is the input of AddItem.
type NewItem struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// encodeItems produces the stored form of the cart: a JSON array of line
// items, "[]" when empty.
func encodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

func decodeItems(raw []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func indexOf(items []LineItem, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
