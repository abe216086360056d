// Package api exposes the storefront HTTP API: menu browsing, product
// options, session carts, order submission, and order status tracking.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/najugourmet/storefront/internal/domain/cart"
	"github.com/najugourmet/storefront/internal/domain/catalog"
	"github.com/najugourmet/storefront/internal/domain/order"
	"github.com/najugourmet/storefront/internal/handoff"
	"github.com/najugourmet/storefront/internal/tracker"
)

// Handler serves the storefront API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	catalog    catalog.Repository
	classifier *catalog.Classifier
	sessions   *cart.Store
	orders     *order.Service
	tracker    *tracker.Tracker
	whatsapp   *handoff.Builder
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	catalogRepo catalog.Repository,
	classifier *catalog.Classifier,
	sessions *cart.Store,
	orders *order.Service,
	trk *tracker.Tracker,
	whatsapp *handoff.Builder,
) *Handler {
	return &Handler{
		catalog:    catalogRepo,
		classifier: classifier,
		sessions:   sessions,
		orders:     orders,
		tracker:    trk,
		whatsapp:   whatsapp,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", h.getMenu)
		r.Get("/products/{productID}/options", h.getProductOptions)

		r.Route("/cart", func(r chi.Router) {
			r.Use(withSession)
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{itemID}", h.updateCartItem)
			r.Delete("/items/{itemID}", h.removeCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(withSession).Post("/", h.submitOrder)
			r.Get("/{orderID}", h.getOrder)
			r.Get("/{orderID}/events", h.streamOrderEvents)
		})
	})

	return r
}
