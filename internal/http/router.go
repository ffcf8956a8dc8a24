package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterDeps struct {
	Carts          CartManager
	Checkout       Checkout
	Discounts      Discounts
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	cartHandler := NewCartHandler(deps.Carts, deps.RequestTimeout, deps.Logger)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.RequestTimeout, deps.Logger)
	ordersHandler := NewOrdersHandler(deps.Checkout, deps.RequestTimeout, deps.Logger)
	discountHandler := NewDiscountHandler(deps.Discounts, deps.RequestTimeout, deps.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipping-methods", checkoutHandler.ShippingMethods)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{key}", cartHandler.UpdateQuantity)
				r.Delete("/items/{key}", cartHandler.RemoveItem)
			})

			r.Get("/checkout/preview", checkoutHandler.Preview)
			r.Post("/checkout", checkoutHandler.PlaceOrder)
		})

		r.Post("/discounts", discountHandler.Issue)
		r.Post("/discounts/validate", discountHandler.Validate)

		r.Get("/orders/{id}", ordersHandler.GetOrder)
		r.Get("/users/{userID}/orders", ordersHandler.ListUserOrders)
		r.Get("/users/{userID}/loyalty", ordersHandler.LoyaltyBalance)
	})

	return otelhttp.NewHandler(r, "storefront-http")
}
