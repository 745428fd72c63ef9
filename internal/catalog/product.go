package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Featured    bool            `json:"featured"`
	Stock       int             `json:"stock"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// Source supplies the product list a Catalog is built from.
type Source interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
}
