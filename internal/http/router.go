package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(catalog *CatalogHandler, carts *CartHandler, orders *OrderHandler, users *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", catalog.CreateProduct)
			r.Get("/", catalog.ListProducts)
			r.Get("/{productId}", catalog.GetProduct)
			r.Put("/{productId}", catalog.UpdateProduct)
			r.Delete("/{productId}", catalog.DeleteProduct)
			r.Post("/{productId}/inventory", catalog.AdjustInventory)
			r.Post("/{productId}/images", catalog.UploadImage)
			r.Get("/{productId}/images", catalog.ListImages)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", catalog.CreateCategory)
			r.Get("/", catalog.ListCategories)
			r.Get("/{categoryId}", catalog.GetCategory)
			r.Put("/{categoryId}", catalog.UpdateCategory)
			r.Delete("/{categoryId}", catalog.DeleteCategory)
		})

		r.Route("/images/{imageId}", func(r chi.Router) {
			r.Get("/", catalog.GetImage)
			r.Get("/download", catalog.DownloadImage)
			r.Put("/", catalog.UpdateImage)
			r.Delete("/", catalog.DeleteImage)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Create)
			r.Get("/{userId}", users.Get)
			r.Put("/{userId}", users.Update)
			r.Delete("/{userId}", users.Delete)

			r.Route("/{userId}/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Get("/total", carts.GetTotal)
				r.Post("/items", carts.AddItem)
				r.Get("/items/{productId}", carts.GetItem)
				r.Put("/items/{productId}", carts.UpdateItemQuantity)
				r.Delete("/items/{productId}", carts.RemoveItem)
			})

			r.Post("/{userId}/orders", orders.PlaceOrder)
			r.Get("/{userId}/orders", orders.ListByUser)
		})

		r.Get("/orders/{orderId}", orders.Get)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "shop-service",
	})
}
