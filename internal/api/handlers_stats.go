package api

import (
	"net/http"
)

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"operations":  s.stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
