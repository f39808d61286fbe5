package handlers

import (
	"net/http"

	applog "nutricalc/internal/log"
	"nutricalc/internal/views/docs"
)

// Docs renders the HTML API reference.
func Docs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docs.APIReference(docs.Endpoints()).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render api reference", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
