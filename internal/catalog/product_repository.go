package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductFilter narrows List; the zero value lists the whole catalog.
// Category matches the category's name, Brand and Name match exactly.
type ProductFilter struct {
	Category string
	Brand    string
	Name     string
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	SetInventory(ctx context.Context, productID string, inventory int) error
	DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) error
}

type productRepo struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (id, name, brand, description, price, inventory, category_id)
         VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7::text, '')::uuid)
         RETURNING updated_at`,
		p.ID, p.Name, p.Brand, p.Description, p.Price, p.Inventory, p.CategoryID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, productID string) (*Product, error) {
	var p Product
	var categoryID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, brand, description, price, inventory, category_id, updated_at
         FROM products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.Name, &p.Brand, &p.Description, &p.Price, &p.Inventory, &categoryID, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	p.CategoryID = categoryID.String
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products
         SET name = $2, brand = $3, description = $4, price = $5, inventory = $6,
             category_id = NULLIF($7::text, '')::uuid, updated_at = $8
         WHERE id = $1`,
		p.ID, p.Name, p.Brand, p.Description, p.Price, p.Inventory, p.CategoryID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, productID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, f ProductFilter) ([]Product, error) {
	query := `SELECT p.id, p.name, p.brand, p.description, p.price, p.inventory, p.category_id, p.updated_at
         FROM products p LEFT JOIN categories c ON c.id = p.category_id`

	var conds []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("c.name = $%d", len(args)))
	}
	if f.Brand != "" {
		args = append(args, f.Brand)
		conds = append(conds, fmt.Sprintf("p.brand = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, f.Name)
		conds = append(conds, fmt.Sprintf("p.name = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var categoryID sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Description, &p.Price, &p.Inventory, &categoryID, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.CategoryID = categoryID.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return products, nil
}

func (r *productRepo) SetInventory(ctx context.Context, productID string, inventory int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET inventory = $2, updated_at = NOW() WHERE id = $1`,
		productID, inventory,
	)
	if err != nil {
		return fmt.Errorf("set inventory: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DecrementStockTx locks the product row and decrements its inventory inside
// the caller's transaction. The decrement is rejected outright when fewer
// units are available than requested, so stock can never go negative.
func (r *productRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	var available int
	err := tx.QueryRowContext(ctx,
		`SELECT inventory FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("lock product: %w", err)
	}

	if available < quantity {
		return fmt.Errorf("product %s: requested %d, available %d: %w",
			productID, quantity, available, ErrInsufficientStock)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET inventory = inventory - $2, updated_at = NOW() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	return nil
}
