package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/logkey"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the three error tiers: rejections carry their own status,
// not-found becomes 404, everything else is a logged 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if rej, ok := apperr.AsRejection(err); ok {
		writeJSON(w, rej.Status, rej)
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, apperr.Reject(http.StatusNotFound, "not found"))
		return
	}
	slog.Error("request failed",
		slog.String(logkey.TraceID, middleware.GetReqID(r.Context())),
		slog.String(logkey.ERROR, err.Error()))
	writeJSON(w, http.StatusInternalServerError,
		apperr.Reject(http.StatusInternalServerError, "internal server error"))
}

// listResponse is the pagination envelope: data plus totalPages.
type listResponse struct {
	Data       any   `json:"data"`
	TotalPages int64 `json:"totalPages"`
}

// pageParams reads ?page= and ?limit=; page is 1-indexed.
func pageParams(r *http.Request) (int64, int64) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// pathID parses the {id} route parameter; on failure it answers 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apperr.Reject(http.StatusBadRequest, "invalid json"))
		return false
	}
	return true
}
