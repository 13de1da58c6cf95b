package api

import (
	"fmt"
	"net/http"

	"github.com/dgallion1/docedit/internal/export"
	"github.com/dgallion1/docedit/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleExport serializes the session's current content. The snapshot is taken before any
// encoding starts, so later edits do not affect this export.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if _, err := export.ForFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := sess.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if isAsync(r) {
		s.submit(w, r, pipeline.NewJob(pipeline.KindExport, snap.ID, snap.Filename, format, snap.HTML))
		return
	}

	out, err := s.orchestrator.Converter().Encode(snap.HTML, snap.Filename, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("document exported", "doc_id", snap.ID, "version", snap.Version, "filename", out.Filename, "bytes", len(out.Data))
	writeOutput(w, out)
}

// handleConvert is a stateless import-then-export of an uploaded file.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("to")
	if _, err := export.ForFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	filename, data, ok := s.readUpload(w, r, true)
	if !ok {
		return
	}

	if isAsync(r) {
		s.submit(w, r, pipeline.NewJob(pipeline.KindImport, "", filename, format, data))
		return
	}

	out, err := s.orchestrator.Converter().Convert(data, filename, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOutput(w, out)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"doc_id":     job.DocID,
		"kind":       job.Kind,
		"status":     pipeline.StatusQueued,
		"poll_url":   fmt.Sprintf("/api/jobs/%s/status", job.ID),
		"result_url": fmt.Sprintf("/api/jobs/%s/result", job.ID),
	})
}
