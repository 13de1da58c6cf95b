package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

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
	snap := job.Snapshot()
	if !snap.Finished() {
		writeJSON(w, http.StatusConflict, map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"error":  "job not finished",
		})
		return
	}

	out, err := job.Result()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOutput(w, out)
}
