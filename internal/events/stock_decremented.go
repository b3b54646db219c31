package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/agure1996/cinab-website/internal/order"
)

const (
	stockDecrementedEventName    = "StockDecremented"
	stockDecrementedEventVersion = 1
	stockDecrementedSchema       = "contracts/events/inventory/StockDecremented.v1.payload.schema.json"
)

// StockDecrement is one product's inventory reduction.
type StockDecrement struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// StockDecrementedPayload records the inventory taken by a placed order.
type StockDecrementedPayload struct {
	OrderID   string           `json:"orderId"`
	UserID    string           `json:"userId"`
	Items     []StockDecrement `json:"items"`
	Timestamp time.Time        `json:"timestamp"`
}

type StockDecrementedEnvelope = EventEnvelope[StockDecrementedPayload]

// BuildStockDecrementedEnvelope wraps the inventory movements of a placed
// order, partitioned by order id so it sorts with the OrderPlaced event.
func BuildStockDecrementedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) StockDecrementedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]StockDecrement, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, StockDecrement{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	return StockDecrementedEnvelope{
		EventName:     stockDecrementedEventName,
		EventVersion:  stockDecrementedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      shopServiceName,
		PartitionKey:  o.ID,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        stockDecrementedSchema,
		Payload: StockDecrementedPayload{
			OrderID:   o.ID,
			UserID:    o.UserID,
			Items:     items,
			Timestamp: o.CreatedAt,
		},
	}
}
