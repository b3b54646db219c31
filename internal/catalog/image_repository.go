package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ImageRepository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, imageID string) (*Image, error)
	ListByProduct(ctx context.Context, productID string) ([]Image, error)
	Update(ctx context.Context, img *Image) error
	Delete(ctx context.Context, imageID string) error
}

type imageRepo struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) ImageRepository {
	return &imageRepo{db: db}
}

func (r *imageRepo) Create(ctx context.Context, img *Image) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.DownloadURL = downloadURL(img.ID)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO product_images (id, product_id, file_name, content_type, data, download_url)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING created_at`,
		img.ID, img.ProductID, img.FileName, img.ContentType, img.Data, img.DownloadURL,
	).Scan(&img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *imageRepo) GetByID(ctx context.Context, imageID string) (*Image, error) {
	var img Image
	err := r.db.QueryRowContext(ctx,
		`SELECT id, product_id, file_name, content_type, data, download_url, created_at
         FROM product_images WHERE id = $1`,
		imageID,
	).Scan(&img.ID, &img.ProductID, &img.FileName, &img.ContentType, &img.Data, &img.DownloadURL, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("select image: %w", err)
	}
	return &img, nil
}

// ListByProduct omits the binary payload; callers fetch bytes via GetByID.
func (r *imageRepo) ListByProduct(ctx context.Context, productID string) ([]Image, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, file_name, content_type, download_url, created_at
         FROM product_images WHERE product_id = $1 ORDER BY created_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("select images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.FileName, &img.ContentType, &img.DownloadURL, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return images, nil
}

func (r *imageRepo) Update(ctx context.Context, img *Image) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_images SET file_name = $2, content_type = $3, data = $4 WHERE id = $1`,
		img.ID, img.FileName, img.ContentType, img.Data,
	)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *imageRepo) Delete(ctx context.Context, imageID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrImageNotFound
	}
	return nil
}

func downloadURL(imageID string) string {
	return "/api/v1/images/" + imageID + "/download"
}
