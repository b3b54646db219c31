package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, userID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, u *User) error {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, u.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return fmt.Errorf("email %s: %w", u.Email, ErrEmailTaken)
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name)
         VALUES ($1, $2, $3, $4)
         RETURNING created_at`,
		u.ID, u.Email, u.FirstName, u.LastName,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, userID string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// Update changes the user's name; email is immutable once registered.
func (r *repo) Update(ctx context.Context, u *User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = $2, last_name = $3 WHERE id = $1`,
		u.ID, u.FirstName, u.LastName,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
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

func (r *repo) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
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
