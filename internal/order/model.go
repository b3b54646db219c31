package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a frozen order line: quantity and unit price copied from the cart
// at placement time so later catalog changes never rewrite order history.
type Item struct {
	ID        string          `json:"itemId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type Order struct {
	ID          string          `json:"orderId"`
	CartID      string          `json:"cartId"`
	UserID      string          `json:"userId"`
	Status      Status          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []Item          `json:"items"`
	CreatedAt   time.Time       `json:"orderDate"`
}

func (i Item) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
