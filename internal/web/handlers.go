package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/signsurvey/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.UploadPage(s.cfg.Upload.MaxFileSize, s.cfg.Upload.PreviewRows).Render(r.Context(), w)
}

// handleGetPhoto returns one stored photo by its photo name.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	customID := chi.URLParam(r, "customID")

	photo, err := s.store.GetPhoto(r.Context(), customID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, photo)
}

// handleImportStatus reports import slot usage.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.limiter.Status())
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
