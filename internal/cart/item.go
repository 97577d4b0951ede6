package cart

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/price"
)

// LineItem is one distinct product in the cart. Price stays in its display
// form; arithmetic goes through the price package.
type LineItem struct {
	ID       int    `json:"id"                 validate:"gte=0"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"           validate:"lte=99"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Product is what the listing hands to AddItem: a line item without a quantity.
type Product struct {
	ID       int    `json:"id"       validate:"gte=0"`
	Name     string `json:"name"     validate:"required"`
	Category string `json:"category"`
	Price    string `json:"price"    validate:"required,price"`
	ImageURL string `json:"imageUrl"`
}

func (p Product) lineItem(quantity int) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Quantity: quantity,
		ImageURL: p.ImageURL,
	}
}

// Product drops the quantity.
func (i LineItem) Product() Product {
	return Product{
		ID:       i.ID,
		Name:     i.Name,
		Category: i.Category,
		Price:    i.Price,
		ImageURL: i.ImageURL,
	}
}

func TotalItems(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func TotalPrice(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(price.Line(item.Price, item.Quantity))
	}
	return total
}

func cloneItems(items []LineItem) []LineItem {
	cloned := make([]LineItem, len(items))
	copy(cloned, items)
	return cloned
}
