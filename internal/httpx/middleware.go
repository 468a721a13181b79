package httpx

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/account"
	"github.com/freshkart/freshkart-api/internal/apperr"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxRole
)

// TokenParser validates a bearer token and returns the subject and role.
type TokenParser interface {
	Parse(token string) (userID, role string, err error)
}

// Auth guards routes with a bearer JWT.
type Auth struct {
	Tokens TokenParser
}

// Require rejects requests without a valid bearer token and stashes the
// caller's id and role in the request context.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeJSON(w, http.StatusUnauthorized, apperr.Reject(http.StatusUnauthorized, "missing bearer token"))
			return
		}
		sub, role, err := a.Tokens.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apperr.Reject(http.StatusUnauthorized, "invalid token"))
			return
		}
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apperr.Reject(http.StatusUnauthorized, "invalid token"))
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		ctx = context.WithValue(ctx, ctxRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Admin must run after Require.
func (a *Auth) Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role, _ := r.Context().Value(ctxRole).(string); role != account.RoleAdmin {
			writeJSON(w, http.StatusForbidden, apperr.Reject(http.StatusForbidden, "admin only"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callerID(r *http.Request) primitive.ObjectID {
	id, _ := r.Context().Value(ctxUserID).(primitive.ObjectID)
	return id
}
