package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID returns nil without an error when no order has the id.
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	// CreateTx inserts the order and its items inside the caller's
	// transaction, so placement can commit the order together with the
	// stock decrement and cart deletion.
	CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) CreateTx(ctx context.Context, tx *sql.Tx, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, cart_id, user_id, status, total_amount, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CartID, o.UserID, o.Status, o.TotalAmount, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
             VALUES ($1, $2, $3, $4, $5)`,
			o.Items[i].ID, o.ID, o.Items[i].ProductID, o.Items[i].Quantity, o.Items[i].UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_id, user_id, status, total_amount, created_at
         FROM orders WHERE id = $1`,
		orderID,
	).Scan(&o.ID, &o.CartID, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cart_id, user_id, status, total_amount, created_at
         FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CartID, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}

func (r *repo) itemsFor(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, quantity, unit_price
         FROM order_items WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return items, nil
}
