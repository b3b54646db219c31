package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agure1996/cinab-website/internal/order"
)

const (
	orderPlacedEventName    = "OrderPlaced"
	orderPlacedEventVersion = 1
	orderPlacedSchema       = "contracts/events/order/OrderPlaced.v1.payload.schema.json"
)

// OrderLine is the wire shape of a single frozen order line.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderPlacedPayload is the v1 payload schema.
type OrderPlacedPayload struct {
	OrderID     string          `json:"orderId"`
	CartID      string          `json:"cartId"`
	UserID      string          `json:"userId"`
	Status      string          `json:"status"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Timestamp   time.Time       `json:"timestamp"`
}

type OrderPlacedEnvelope = EventEnvelope[OrderPlacedPayload]

// BuildOrderPlacedEnvelope wraps a placed order in the common event envelope,
// partitioned by order id.
func BuildOrderPlacedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderPlacedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return OrderPlacedEnvelope{
		EventName:     orderPlacedEventName,
		EventVersion:  orderPlacedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      shopServiceName,
		PartitionKey:  o.ID,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderPlacedSchema,
		Payload: OrderPlacedPayload{
			OrderID:     o.ID,
			CartID:      o.CartID,
			UserID:      o.UserID,
			Status:      string(o.Status),
			Items:       items,
			TotalAmount: o.TotalAmount,
			Timestamp:   o.CreatedAt,
		},
	}
}
