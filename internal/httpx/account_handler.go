package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshkart/freshkart-api/internal/account"
)

// AccountHandler covers signup with OTP verification, login, and the admin
// user roster.
type AccountHandler struct {
	Accounts *account.Service
}

func (h *AccountHandler) Register(r chi.Router, auth *Auth) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/verify-otp", h.verifyOTP)
		r.Post("/login", h.login)
	})

	r.Route("/admin/users", func(r chi.Router) {
		r.Use(auth.Require, auth.Admin)
		r.Get("/", h.listUsers)
		r.Patch("/{id}/block", h.block)
		r.Patch("/{id}/unblock", h.unblock)
	})
}

func (h *AccountHandler) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.Accounts.Register(r.Context(), body.Name, body.Email, body.Password); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification code sent"})
}

func (h *AccountHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	u, err := h.Accounts.VerifyOTP(r.Context(), body.Email, body.OTP)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	token, u, err := h.Accounts.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (h *AccountHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, pages, err := h.Accounts.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Data: users, TotalPages: pages})
}

func (h *AccountHandler) block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

func (h *AccountHandler) unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AccountHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.Accounts.SetBlocked(r.Context(), id, blocked)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
