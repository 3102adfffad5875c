package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tcm/internal/core"
	"github.com/JonMunkholm/tcm/internal/logging"
)

// ImportResponse is returned when an import job has been accepted.
type ImportResponse struct {
	ImportID string `json:"import_id"`
}

// handleImport accepts a CSV or Excel file and starts an import job.
// Form fields: file (required), skipHeader (optional, default from config).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	if r.ContentLength > maxSize {
		s.respondError(w, r, fmt.Errorf("file too large: %w", &http.MaxBytesError{Limit: maxSize}))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("file too large: %w", err))
			return
		}
		s.respondError(w, r, &core.Error{Kind: core.KindInvalid, Message: "Invalid upload form", Err: err})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, &core.Error{Kind: core.KindInvalid, Message: "No file provided", Err: err})
		return
	}
	defer file.Close()

	skipHeader := s.cfg.Import.SkipHeader
	if raw := r.FormValue("skipHeader"); raw != "" {
		skipHeader, err = strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, r, &core.Error{Kind: core.KindInvalid, Message: "skipHeader must be true or false", Err: err})
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	importID, err := s.service.StartImport(r.Context(), header.Filename, data, skipHeader)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "import_id", importID, "file", header.Filename).
		Info("import accepted", "bytes", len(data), "skip_header", skipHeader)

	writeJSON(w, http.StatusAccepted, ImportResponse{ImportID: importID})
}

// handleImportStatus returns the current progress without waiting.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	progress, err := s.service.ImportProgress(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// progressCursor decides which progress events a stream sends. The event
// id is the processed-row count, so a phase change at the same count
// still has to go out.
type progressCursor struct {
	lastID    int
	lastPhase core.ImportPhase
}

// next reports whether p should be sent and records it as seen.
func (c *progressCursor) next(p core.ImportProgress) bool {
	phaseChanged := c.lastPhase != "" && p.Phase != c.lastPhase
	c.lastPhase = p.Phase
	if p.Processed <= c.lastID && !phaseChanged && !p.Phase.Done() {
		return false
	}
	c.lastID = p.Processed
	return true
}

// handleImportProgress streams import progress via Server-Sent Events.
// Supports resumption via the lastEventId query parameter; the event id is
// the number of processed rows.
func (s *Server) handleImportProgress(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	cursor := progressCursor{lastID: -1}
	if raw := r.URL.Query().Get("lastEventId"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cursor.lastID = v
		}
	}

	progressCh, err := s.service.SubscribeProgress(importID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				s.writeCompleteEvent(w, r, importID)
				rc.Flush()
				return
			}

			if !cursor.next(progress) {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", progress.Processed, data)
			if err := rc.Flush(); err != nil {
				logging.FromContext(r.Context()).Warn("sse flush failed", "error", err)
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// writeCompleteEvent sends the final result as the last SSE event.
func (s *Server) writeCompleteEvent(w http.ResponseWriter, r *http.Request, importID string) {
	result, err := s.service.ImportResult(r.Context(), importID)
	if err != nil || result == nil {
		fmt.Fprint(w, "event: complete\ndata: {}\n\n")
		return
	}
	data, _ := json.Marshal(result)
	fmt.Fprintf(w, "event: complete\ndata: %s\n\n", data)
}

// handleImportResult waits for the job to finish and returns its result.
func (s *Server) handleImportResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ImportResult(r.Context(), chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCancelImport stops a running import after the row in progress.
func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CancelImport(chi.URLParam(r, "importID")); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}
