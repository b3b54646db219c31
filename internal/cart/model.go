package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no cart exists for the given user or id.
	ErrNotFound = errors.New("cart not found")
	// ErrLineNotFound is returned when the cart holds no line for the product.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrInvalidQuantity is returned when a caller asks for a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Line is a single product entry in a cart. UnitPrice is the price
// snapshotted when the product was first added; it does not track later
// catalog price changes.
type Line struct {
	ID        string          `json:"itemId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"totalPrice"`
}

type Cart struct {
	ID        string          `json:"cartId"`
	UserID    string          `json:"userId"`
	Lines     []Line          `json:"items"`
	Total     decimal.Decimal `json:"totalAmount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Recalculate refreshes each line total and the cart total from the stored
// quantities and unit prices.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Lines {
		c.Lines[i].LineTotal = c.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Lines[i].Quantity)))
		total = total.Add(c.Lines[i].LineTotal)
	}
	c.Total = total
}

// FindLine returns a pointer into Lines for the product, or nil.
func (c *Cart) FindLine(productID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

func (c *Cart) removeLine(productID string) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}
