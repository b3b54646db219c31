package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agure1996/cinab-website/internal/cart"
	"github.com/agure1996/cinab-website/internal/catalog"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	c, err := h.carts.GetOrCreate(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) GetTotal(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	total, err := h.carts.TotalPrice(r.Context(), userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to compute total")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totalAmount": total})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	c, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, "quantity must be positive")
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	line, err := h.carts.GetItem(r.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) || errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load cart item")
		return
	}

	writeJSON(w, http.StatusOK, line)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.carts.UpdateItemQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "cart not found")
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update item")
		}
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	c, err := h.carts.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) || errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	writeJSON(w, http.StatusOK, c)
}
