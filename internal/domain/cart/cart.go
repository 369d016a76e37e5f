package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductType distinguishes the two product families sold by the shop.
type ProductType string

const (
	ProductCake  ProductType = "cake"
	ProductDrink ProductType = "drink"
)

// ToppingRef points at a topping attached to a cart line. The frontend
// sometimes sends sparse entries, so both fields may be empty.
type ToppingRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Line is a single cart entry as the frontend holds it. IDs arrive in two
// shapes: ProductID is the clean, pre-resolved identifier when the cart
// already knows it; SourceID and RawID are legacy composites that may embed
// a type prefix such as "cake-<uuid>".
type Line struct {
	RawID     string          `json:"rawId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Toppings  []ToppingRef    `json:"selectedToppings"`
	Type      ProductType     `json:"productType"`
	SourceID  string          `json:"sourceId"`
}

// Item is the canonical order line sent to the order service: a bare product
// UUID, its type, a positive quantity and the flattened topping IDs.
type Item struct {
	ProductID   string      `json:"productId"`
	ProductType ProductType `json:"productType"`
	Quantity    int         `json:"quantity"`
	ToppingIDs  []string    `json:"toppingIds"`
}

// InvalidProductError indicates a cart line whose product ID could not be
// resolved to a usable identifier. It names the product so the user can tell
// which line is broken.
type InvalidProductError struct {
	Name string
	ID   string
}

func (e *InvalidProductError) Error() string {
	return fmt.Sprintf("product %q has an unresolvable id %q", e.Name, e.ID)
}

// Subtotal returns the sum of quantity * unit price across all lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}
