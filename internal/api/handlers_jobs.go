package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/lessonfmt/internal/pipeline"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/source"
	"github.com/go-chi/chi/v5"
)

// readUpload parses a multipart request and returns the "file" part. It
// writes the error response itself when ok is false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename string, data []byte, ok bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

// handleImport converts an uploaded file to plain lesson text without
// parsing it, so the client can review the text before rendering.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	imp, err := source.ForFile(filename, source.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.stats.Since("import", start)

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"title":    doc.Title,
		"text":     doc.Text,
	})
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	job := pipeline.NewJob(filename, r.FormValue("title"), data)
	if v := r.FormValue("sessions"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "sessions must be an integer", http.StatusBadRequest)
			return
		}
		job.Sessions = n
	}
	job.Context = questionContext(r.FormValue("format"), r.FormValue("subtype"), r.FormValue("hint"))

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	surface, err := render.ParseSurface(r.URL.Query().Get("surface"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "job failed",
			"errors": snap.Progress.Errors,
		})
		return
	default:
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}

	res := job.Result()
	w.Header().Set("ETag", `"`+res.ContentHash+`"`)
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":       snap.ID,
		"title":        res.Document.Title,
		"content_hash": res.ContentHash,
		"sessions":     sessionViews(res.Document),
		"fragments":    res.Fragments.Only(surface),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
