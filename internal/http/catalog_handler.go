package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agure1996/cinab-website/internal/catalog"
)

// maxImageBytes caps uploads; product shots do not need more.
const maxImageBytes = 5 << 20

type CatalogHandler struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	images     catalog.ImageRepository
}

func NewCatalogHandler(products catalog.ProductRepository, categories catalog.CategoryRepository, images catalog.ImageRepository) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories, images: images}
}

type productRequest struct {
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Category    string          `json:"category"`
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Price.IsNegative() || req.Inventory < 0 {
		writeError(w, http.StatusBadRequest, "name required, price and inventory must be non-negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := &catalog.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       req.Price,
		Inventory:   req.Inventory,
	}

	if req.Category != "" {
		c, err := h.categories.EnsureByName(ctx, req.Category)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve category")
			return
		}
		p.CategoryID = c.ID
	}

	if err := h.products.Create(ctx, p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	filter := catalog.ProductFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Name:     q.Get("name"),
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Price.IsNegative() || req.Inventory < 0 {
		writeError(w, http.StatusBadRequest, "name required, price and inventory must be non-negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := &catalog.Product{
		ID:          productID,
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Price:       req.Price,
		Inventory:   req.Inventory,
	}

	if req.Category != "" {
		c, err := h.categories.EnsureByName(ctx, req.Category)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve category")
			return
		}
		p.CategoryID = c.ID
	}

	if err := h.products.Update(ctx, p); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type adjustInventoryRequest struct {
	Inventory int `json:"inventory"`
}

func (h *CatalogHandler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req adjustInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Inventory < 0 {
		writeError(w, http.StatusBadRequest, "inventory must be non-negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.SetInventory(ctx, productID, req.Inventory); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to adjust inventory")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.categories.Create(ctx, req.Name)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryExists) {
			writeError(w, http.StatusConflict, "category already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load category")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	categories, err := h.categories.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := &catalog.Category{ID: categoryID, Name: req.Name}
	if err := h.categories.Update(ctx, c); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.categories.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Reject uploads against products that do not exist.
	if _, err := h.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	img := &catalog.Image{
		ProductID:   productID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	if err := h.images.Create(ctx, img); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, img)
}

func (h *CatalogHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	images, err := h.images.ListByProduct(ctx, productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	writeJSON(w, http.StatusOK, images)
}

func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	img, err := h.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load image")
		return
	}

	writeJSON(w, http.StatusOK, img)
}

func (h *CatalogHandler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	img, err := h.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load image")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+img.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *CatalogHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	img := &catalog.Image{
		ID:          imageID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	if err := h.images.Update(ctx, img); err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update image")
		return
	}

	writeJSON(w, http.StatusOK, img)
}

func (h *CatalogHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.images.Delete(ctx, imageID); err != nil {
		if errors.Is(err, catalog.ErrImageNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
