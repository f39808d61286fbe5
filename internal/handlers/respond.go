package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	applog "nutricalc/internal/log"
	"nutricalc/internal/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps store failures onto HTTP statuses. Anything that is
// not a known sentinel is logged and hidden behind a generic 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		applog.Debug(r.Context(), "record not found", "action", action, "error", err)
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateIngredient):
		writeJSON(w, http.StatusUnprocessableEntity, validationError{
			Error:  "validation failed",
			Fields: map[string]string{"ingredients": "each ingredient may appear only once"},
		})
	case errors.Is(err, store.ErrConflict):
		writeJSONError(w, http.StatusConflict, "already exists")
	default:
		applog.Error(r.Context(), "store operation failed", "action", action, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to "+action)
	}
}

// pathID parses the {id} route parameter. Malformed ids are reported as not
// found.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		applog.Debug(r.Context(), "invalid identifier", "identifier", raw)
		writeJSONError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return uint(value), true
}
