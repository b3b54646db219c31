package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, name string) (*Category, error)
	GetByID(ctx context.Context, categoryID string) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, categoryID string) error
	// EnsureByName returns the existing category with the given name,
	// creating it first when none exists.
	EnsureByName(ctx context.Context, name string) (*Category, error)
}

type categoryRepo struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, name string) (*Category, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrCategoryExists)
	}

	c := &Category{ID: uuid.NewString(), Name: name}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)`,
		c.ID, c.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, categoryID string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, categoryID,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

// GetByName returns nil without an error when no category has the name.
func (r *categoryRepo) GetByName(ctx context.Context, name string) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE name = $1`, name,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select category by name: %w", err)
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $2 WHERE id = $1`, c.ID, c.Name,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, categoryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepo) EnsureByName(ctx context.Context, name string) (*Category, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return r.Create(ctx, name)
}
