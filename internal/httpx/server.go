package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Handlers bundles the per-domain handlers mounted under /api.
type Handlers struct {
	Auth      *Auth
	Account   *AccountHandler
	Catalog   *CatalogHandler
	Cart      *CartHandler
	Checkout  *CheckoutHandler
	Review    *ReviewHandler
	Dashboard *DashboardHandler
}

func Mount(r chi.Router, h Handlers) {
	r.Route("/api", func(api chi.Router) {
		h.Account.Register(api, h.Auth)
		h.Catalog.Register(api, h.Auth)
		h.Cart.Register(api, h.Auth)
		h.Checkout.Register(api, h.Auth)
		h.Review.Register(api, h.Auth)
		h.Dashboard.Register(api, h.Auth)
	})
}
