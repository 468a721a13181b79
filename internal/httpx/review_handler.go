package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/review"
)

// ReviewHandler lets customers submit reviews, everyone read approved ones,
// and admins moderate the queue.
type ReviewHandler struct {
	Reviews *review.Service
}

func (h *ReviewHandler) Register(r chi.Router, auth *Auth) {
	r.Get("/products/{id}/reviews", h.byProduct)
	r.With(auth.Require).Post("/products/{id}/reviews", h.submit)

	r.Route("/admin/reviews", func(r chi.Router) {
		r.Use(auth.Require, auth.Admin)
		r.Get("/", h.listAll)
		r.Patch("/{id}/approve", h.approve)
		r.Patch("/{id}/decline", h.decline)
	})
}

func (h *ReviewHandler) submit(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	rev, err := h.Reviews.Submit(r.Context(), callerID(r), productID, body.Rating, body.Comment)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

func (h *ReviewHandler) byProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r)
	if !ok {
		return
	}
	page, limit := pageParams(r)
	items, pages, err := h.Reviews.ListForProduct(r.Context(), productID, page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *ReviewHandler) listAll(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := review.Status(r.URL.Query().Get("status"))
	items, pages, err := h.Reviews.ListAll(r.Context(), status, page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *ReviewHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Reviews.Approve)
}

func (h *ReviewHandler) decline(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.Reviews.Decline)
}

func (h *ReviewHandler) moderate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id primitive.ObjectID) (*review.Review, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rev, err := op(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}
