package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/signsurvey/internal/ingest"
	"github.com/JonMunkholm/signsurvey/internal/logging"
	"github.com/JonMunkholm/signsurvey/internal/progress"
)

// maxPreviewRows caps the limit query parameter of the preview endpoint.
const maxPreviewRows = 1000

// handleImport streams a survey export into the store and answers with the
// NDJSON progress stream. File-level failures are answered with a JSON error
// before the stream starts; afterwards the only failure signal is a stream
// that ends without its complete message.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	if r.ContentLength > maxSize {
		s.metrics.Rejected()
		s.respondError(w, r, &http.MaxBytesError{Limit: maxSize})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	rc := http.NewResponseController(w)
	s.extendDeadlines(r.Context(), rc)

	file, name, err := filePart(r)
	if err != nil {
		s.metrics.Rejected()
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.metrics.Rejected()
		s.respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	ctx := r.Context()
	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	imp, err := s.coord.Open(ctx, file)
	if err != nil {
		s.metrics.Rejected()
		s.respondError(w, r, err)
		return
	}

	logger := logging.WithFields(logging.WithImportID(ctx, imp.ID), "file", name)
	logger.Info("import started", "unrecognized_columns", len(imp.Layout().Unrecognized))

	// Progress is written while the rest of the upload is still being read.
	if err := rc.EnableFullDuplex(); err != nil {
		logger.Debug("full duplex unavailable", "error", err)
	}

	w.Header().Set("Content-Type", progress.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Import-ID", imp.ID)
	w.WriteHeader(http.StatusOK)

	summary, err := imp.Run(ctx, progress.NewEncoder(w).Encode)
	if err != nil {
		logger.Warn("import stopped before completion",
			"error", err,
			"code", ingest.MapError(err).Code,
			"rows", summary.Rows,
			"batches", summary.Batches,
		)
	}
}

// extendDeadlines replaces the server's per-request read and write deadlines
// with the upload timeout. The body is read for the whole import, so the
// server ReadTimeout would otherwise cut off any import that outlasts it.
// A zero upload timeout clears the deadlines.
func (s *Server) extendDeadlines(ctx context.Context, rc *http.ResponseController) {
	var deadline time.Time
	if s.cfg.Upload.Timeout > 0 {
		deadline = time.Now().Add(s.cfg.Upload.Timeout)
	}
	if err := rc.SetReadDeadline(deadline); err != nil {
		logging.FromContext(ctx).Debug("read deadline not extended", "error", err)
	}
	if s.cfg.Server.WriteTimeout > 0 {
		if err := rc.SetWriteDeadline(deadline); err != nil {
			logging.FromContext(ctx).Debug("write deadline not extended", "error", err)
		}
	}
}

// handlePreview reconstructs the first rows of an export without storing
// them. The row count comes from the limit query parameter.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Upload.PreviewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxPreviewRows)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	file, _, err := filePart(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	preview, err := s.coord.Preview(r.Context(), file, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, preview)
}

// filePart returns the multipart part named "file" without buffering the
// request. Parts before it are skipped.
func filePart(r *http.Request) (io.ReadCloser, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ingest.ErrNoFile, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", ingest.ErrNoFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() == "file" {
			return part, part.FileName(), nil
		}
		part.Close()
	}
}
