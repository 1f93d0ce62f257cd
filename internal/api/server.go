package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/lessonfmt/internal/config"
	"github.com/dgallion1/lessonfmt/internal/pipeline"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for lessonfmt.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	renderer     *render.Renderer
	stats        *stats.Recorder
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. Synchronous endpoints
// share the orchestrator's renderer. A nil rec gets a fresh recorder.
func NewServer(orch *pipeline.Orchestrator, rec *stats.Recorder, log *slog.Logger, cfg config.Config) *Server {
	if rec == nil {
		rec = stats.NewRecorder(cfg.StatsWindow, time.Hour)
	}
	s := &Server{
		orchestrator: orch,
		renderer:     orch.Renderer(),
		stats:        rec,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Group(func(r chi.Router) {
			r.Use(LimitBody(s.cfg.MaxTextBytes))

			r.Post("/api/segment", s.handleSegment)
			r.Post("/api/parse", s.handleParse)
			r.Post("/api/render", s.handleRender)
			r.Post("/api/export/docx", s.handleExportDOCX)
		})

		r.Post("/api/import", s.handleImport)
		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
