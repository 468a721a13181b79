package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/cart"
)

// CartHandler serves the caller's own cart; every route requires a login.
type CartHandler struct {
	Carts *cart.Service
}

func (h *CartHandler) Register(r chi.Router, auth *Auth) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(auth.Require)
		r.Post("/", h.create)
		r.Get("/", h.get)
		r.Post("/items", h.addItem)
		r.Put("/items", h.updateQuantity)
		r.Post("/items/remove", h.removeItem)
		r.Delete("/", h.clear)
	})
}

type cartItemBody struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

func (b cartItemBody) item(w http.ResponseWriter) (cart.Item, bool) {
	productID, err := primitive.ObjectIDFromHex(b.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid product id"))
		return cart.Item{}, false
	}
	variantID, err := primitive.ObjectIDFromHex(b.VariantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid variant id"))
		return cart.Item{}, false
	}
	return cart.Item{ProductID: productID, VariantID: variantID, Quantity: b.Quantity}, true
}

func (h *CartHandler) create(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Create(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.GetByUser(r.Context(), callerID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if !decodeBody(w, r, &body) {
		return
	}
	item, ok := body.item(w)
	if !ok {
		return
	}
	c, err := h.Carts.AddItem(r.Context(), callerID(r), item)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if !decodeBody(w, r, &body) {
		return
	}
	item, ok := body.item(w)
	if !ok {
		return
	}
	c, err := h.Carts.UpdateQuantity(r.Context(), callerID(r), item)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	var body cartItemBody
	if !decodeBody(w, r, &body) {
		return
	}
	item, ok := body.item(w)
	if !ok {
		return
	}
	c, err := h.Carts.RemoveItem(r.Context(), callerID(r), item.ProductID, item.VariantID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), callerID(r)); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}
