package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agure1996/cinab-website/internal/cart"
	"github.com/agure1996/cinab-website/internal/events"
	"github.com/agure1996/cinab-website/internal/order"
)

// stockDecrementer is the slice of the catalog needed at placement time.
type stockDecrementer interface {
	DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) error
}

// cartStore is the transactional slice of the cart repository.
type cartStore interface {
	GetByUserTx(ctx context.Context, tx *sql.Tx, userID string) (*cart.Cart, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, cartID string) error
}

type orderWriter interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *order.Order) error
}

type eventPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta events.EnvelopeMetadata, o *order.Order) error
	PublishStockDecremented(ctx context.Context, meta events.EnvelopeMetadata, o *order.Order) error
}

// Service turns a cart into an order. The whole placement — stock decrement,
// order insert, cart deletion — runs in one serializable transaction, so a
// failed decrement leaves stock, cart and order history untouched.
type Service struct {
	db        *sql.DB
	carts     cartStore
	stock     stockDecrementer
	orders    orderWriter
	publisher eventPublisher
	logger    *log.Logger
}

func NewService(db *sql.DB, carts cartStore, stock stockDecrementer, orders orderWriter, publisher eventPublisher, logger *log.Logger) *Service {
	return &Service{
		db:        db,
		carts:     carts,
		stock:     stock,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder converts the user's cart into a pending order. Order lines
// freeze the cart's unit prices; the cart is deleted on success. Stock that
// cannot cover a line rejects the whole placement.
func (s *Service) PlaceOrder(ctx context.Context, userID string) (*order.Order, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	c, err := s.carts.GetByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrNotFound
	}

	total := decimal.Zero
	items := make([]order.Item, 0, len(c.Lines))
	for _, line := range c.Lines {
		if err := s.stock.DecrementStockTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
		items = append(items, order.Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	o := &order.Order{
		ID:          uuid.NewString(),
		CartID:      c.ID,
		UserID:      userID,
		Status:      order.StatusPending,
		TotalAmount: total,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.orders.CreateTx(ctx, tx, o); err != nil {
		return nil, err
	}

	if err := s.carts.DeleteTx(ctx, tx, c.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	// The order is committed; a publish failure must not un-place it.
	if s.publisher != nil {
		meta := events.EnvelopeMetadata{CorrelationID: uuid.NewString()}
		if err := s.publisher.PublishOrderPlaced(ctx, meta, o); err != nil {
			s.logger.Printf("publish OrderPlaced for order %s: %v", o.ID, err)
		}
		meta.CausationID = o.ID
		if err := s.publisher.PublishStockDecremented(ctx, meta, o); err != nil {
			s.logger.Printf("publish StockDecremented for order %s: %v", o.ID, err)
		}
	}

	return o, nil
}
