package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryExists    = errors.New("category already exists")
	ErrImageNotFound     = errors.New("image not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Product struct {
	ID          string          `json:"productId"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	CategoryID  string          `json:"categoryId,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type Category struct {
	ID   string `json:"categoryId"`
	Name string `json:"name"`
}

type Image struct {
	ID          string    `json:"imageId"`
	ProductID   string    `json:"productId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	DownloadURL string    `json:"downloadUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}
