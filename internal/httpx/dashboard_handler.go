package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshkart/freshkart-api/internal/dashboard"
)

// DashboardHandler serves the aggregate counters the worker maintains.
type DashboardHandler struct {
	Stats *dashboard.Reader
}

func (h *DashboardHandler) Register(r chi.Router, auth *Auth) {
	r.With(auth.Require, auth.Admin).Get("/admin/dashboard", h.stats)
}

func (h *DashboardHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Stats(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
