package api

import (
	"net/http"
)

func (s *Server) handleConversionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"window":      s.cfg.StatsWindow.String(),
		"stats":       s.metrics.Stats.All(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"sessions":    s.sessions.Len(),
	})
}
