package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByUser returns nil without an error when the user has no cart.
	GetByUser(ctx context.Context, userID string) (*Cart, error)
	GetByID(ctx context.Context, cartID string) (*Cart, error)
	// Mutate loads the user's cart under a row lock, applies fn, and
	// persists the result — the whole read-modify-write runs in one
	// serializable transaction so concurrent mutations of the same cart
	// cannot erase each other's lines. With createIfMissing an absent
	// cart is created inside the same transaction; otherwise Mutate
	// fails with ErrNotFound. An error from fn rolls everything back.
	Mutate(ctx context.Context, userID string, createIfMissing bool, fn func(c *Cart) error) (*Cart, error)
	Delete(ctx context.Context, cartID string) error

	// GetByUserTx and DeleteTx run against the caller's transaction so
	// checkout can read and drop the cart in the same unit of work as the
	// stock decrement and order insert.
	GetByUserTx(ctx context.Context, tx *sql.Tx, userID string) (*Cart, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, cartID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *repo) GetByUser(ctx context.Context, userID string) (*Cart, error) {
	return getCart(ctx, r.db, `SELECT id, user_id, total, updated_at FROM carts WHERE user_id = $1`, userID)
}

func (r *repo) GetByID(ctx context.Context, cartID string) (*Cart, error) {
	return getCart(ctx, r.db, `SELECT id, user_id, total, updated_at FROM carts WHERE id = $1`, cartID)
}

func (r *repo) GetByUserTx(ctx context.Context, tx *sql.Tx, userID string) (*Cart, error) {
	return getCart(ctx, tx, `SELECT id, user_id, total, updated_at FROM carts WHERE user_id = $1`, userID)
}

func getCart(ctx context.Context, q querier, query, arg string) (*Cart, error) {
	var c Cart
	err := q.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.UserID, &c.Total, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, product_id, quantity, unit_price
         FROM cart_items WHERE cart_id = $1 ORDER BY id`,
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	c.Recalculate()
	return &c, nil
}

func (r *repo) Mutate(ctx context.Context, userID string, createIfMissing bool, fn func(c *Cart) error) (*Cart, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	c, err := getCart(ctx, tx,
		`SELECT id, user_id, total, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		return nil, err
	}

	created := false
	if c == nil {
		if !createIfMissing {
			return nil, ErrNotFound
		}
		c = &Cart{ID: uuid.NewString(), UserID: userID}
		created = true
	}

	if fn != nil {
		if err := fn(c); err != nil {
			return nil, err
		}
	}

	c.Recalculate()
	c.UpdatedAt = time.Now().UTC()

	if created {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO carts (id, user_id, total, updated_at) VALUES ($1, $2, $3, $4)`,
			c.ID, c.UserID, c.Total, c.UpdatedAt,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE carts SET total = $2, updated_at = $3 WHERE id = $1`,
			c.ID, c.Total, c.UpdatedAt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if !created {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
			return nil, fmt.Errorf("clear cart items: %w", err)
		}
	}

	for i := range c.Lines {
		if c.Lines[i].ID == "" {
			c.Lines[i].ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, quantity, unit_price)
             VALUES ($1, $2, $3, $4, $5)`,
			c.Lines[i].ID, c.ID, c.Lines[i].ProductID, c.Lines[i].Quantity, c.Lines[i].UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("insert cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return c, nil
}

func (r *repo) Delete(ctx context.Context, cartID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) DeleteTx(ctx context.Context, tx *sql.Tx, cartID string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
