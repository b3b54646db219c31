package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agure1996/cinab-website/internal/cart"
	"github.com/agure1996/cinab-website/internal/catalog"
	"github.com/agure1996/cinab-website/internal/order"
)

// placer is what the handler needs from the checkout service.
type placer interface {
	PlaceOrder(ctx context.Context, userID string) (*order.Order, error)
}

type OrderHandler struct {
	orders   order.Repository
	checkout placer
}

func NewOrderHandler(orders order.Repository, checkout placer) *OrderHandler {
	return &OrderHandler{orders: orders, checkout: checkout}
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.checkout.PlaceOrder(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "cart not found")
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusConflict, "cart references a product that no longer exists")
		case errors.Is(err, catalog.ErrInsufficientStock):
			writeError(w, http.StatusConflict, "insufficient stock")
		default:
			writeError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByUser(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
