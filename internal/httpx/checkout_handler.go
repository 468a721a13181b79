package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/freshkart/freshkart-api/internal/checkout"
)

// CheckoutHandler splits the order surface in two: customers place, view and
// return their own orders; admins drive the status axes.
type CheckoutHandler struct {
	Orders *checkout.Service
}

func (h *CheckoutHandler) Register(r chi.Router, auth *Auth) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Require)
		r.Post("/", h.place)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.getMine)
		r.Post("/{id}/return", h.requestReturn)
	})

	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(auth.Require, auth.Admin)
		r.Get("/", h.listAll)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.status)
		r.Patch("/{id}/payment-status", h.setPaymentStatus)
		r.Patch("/{id}/order-status", h.setOrderStatus)
		r.Patch("/{id}/cancel", h.cancel)
		r.Patch("/{id}/return", h.resolveReturn)
		r.Patch("/{id}/refund-status", h.setRefundStatus)
	})
}

func (h *CheckoutHandler) place(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PaymentMethod   checkout.PaymentMethod `json:"paymentMethod"`
		Currency        string                 `json:"currency"`
		CouponCode      string                 `json:"couponCode"`
		DiscountAmount  float64                `json:"discountAmount"`
		ShippingAddress *checkout.Address      `json:"shippingAddress"`
		BillingAddress  *checkout.Address      `json:"billingAddress"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.PlaceOrder(r.Context(), callerID(r), checkout.PlaceOrderInput{
		PaymentMethod:   body.PaymentMethod,
		Currency:        body.Currency,
		CouponCode:      body.CouponCode,
		DiscountAmount:  body.DiscountAmount,
		ShippingAddress: body.ShippingAddress,
		BillingAddress:  body.BillingAddress,
		TraceID:         middleware.GetReqID(r.Context()),
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *CheckoutHandler) listMine(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Orders.ListForUser(r.Context(), callerID(r), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CheckoutHandler) getMine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.Orders.GetForUser(r.Context(), id, callerID(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) requestReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.Orders.RequestReturn(r.Context(), id, callerID(r), middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) listAll(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, pages, err := h.Orders.ListAll(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: items, TotalPages: pages})
}

func (h *CheckoutHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.Orders.Get(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.Orders.Status(r.Context(), id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *CheckoutHandler) setPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status        checkout.PaymentStatus `json:"status"`
		FailureReason string                 `json:"failureReason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.SetPaymentStatus(r.Context(), id, body.Status, body.FailureReason, middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status     checkout.OrderStatus `json:"status"`
		TrackingID string               `json:"trackingId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.SetOrderStatus(r.Context(), id, body.Status, body.TrackingID, middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.Cancel(r.Context(), id, body.Reason, middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) resolveReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Approve bool `json:"approve"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.ResolveReturn(r.Context(), id, body.Approve, middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) setRefundStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status checkout.RefundStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	o, err := h.Orders.SetRefundStatus(r.Context(), id, body.Status, middleware.GetReqID(r.Context()))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
