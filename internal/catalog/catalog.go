package catalog

import (
	"context"
	"fmt"
	"strings"
)

// CategoryAll selects every product in FilterByCategory.
const CategoryAll = "all"

// Catalog is the immutable product list for the lifetime of a process.
// It is safe for concurrent readers; every query returns a fresh slice.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New builds a catalog from products in the given order. Later duplicates
// of an id are ignored.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Load reads the full product list from src once.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.ListSortedByID(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(products), nil
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) All() []Product {
	return c.filter(func(Product) bool { return true })
}

func (c *Catalog) FindByID(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// FilterByCategory matches the category field exactly; CategoryAll returns
// every product.
func (c *Catalog) FilterByCategory(category string) []Product {
	if category == CategoryAll {
		return c.All()
	}
	return c.filter(func(p Product) bool { return p.Category == category })
}

// Search is a case-insensitive substring match on the product name. An empty
// (or blank) term matches everything.
func (c *Catalog) Search(term string) []Product {
	term = normalizeTerm(term)
	return c.filter(func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Name), term)
	})
}

func (c *Catalog) Featured() []Product {
	return c.filter(func(p Product) bool { return p.Featured })
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
