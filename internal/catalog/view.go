package catalog

import (
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"FlashIt/pkg/money"
)

const maxQuantityOptions = 10

// Card is the grid projection of a product.
type Card struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PriceLabel  string          `json:"priceLabel"`
	Image       string          `json:"image"`
	Featured    bool            `json:"featured"`
	InStock     bool            `json:"inStock"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
}

// Detail is the product page projection. QuantityOptions lists the values a
// shopper may pick in one add, capped at ten and at the stock on hand.
type Detail struct {
	Card
	Category        string `json:"category"`
	Stock           int    `json:"stock"`
	QuantityOptions []int  `json:"quantityOptions"`
}

type Page struct {
	Title    string `json:"title"`
	Products []Card `json:"products"`
}

func NewCard(p Product) Card {
	return Card{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		PriceLabel:  money.Format(p.Price),
		Image:       p.Image,
		Featured:    p.Featured,
		InStock:     p.InStock(),
		Rating:      p.Rating,
		Reviews:     p.Reviews,
	}
}

func NewDetail(p Product) Detail {
	n := min(maxQuantityOptions, max(p.Stock, 0))
	opts := make([]int, n)
	for i := range opts {
		opts[i] = i + 1
	}
	return Detail{
		Card:            NewCard(p),
		Category:        p.Category,
		Stock:           p.Stock,
		QuantityOptions: opts,
	}
}

func NewPage(title string, products []Product) Page {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewCard(p))
	}
	return Page{Title: title, Products: cards}
}

func (c *Catalog) CategoryPage(category string) Page {
	return NewPage(categoryTitle(category), c.FilterByCategory(category))
}

func (c *Catalog) SearchPage(term string) Page {
	return NewPage(`Search results for "`+normalizeTerm(term)+`"`, c.Search(term))
}

func (c *Catalog) FeaturedPage() Page {
	return NewPage("Featured Products", c.Featured())
}

func categoryTitle(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return "Products"
	}
	return string(unicode.ToUpper(r)) + category[size:] + " Products"
}
