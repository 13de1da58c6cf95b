package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dgallion1/docedit/internal/docmodel"
	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/walker"
	"github.com/go-chi/chi/v5"
)

type documentResponse struct {
	editor.Snapshot
	HTML    string `json:"html"`
	Content string `json:"content"`
}

type modelResponse struct {
	DocID    string            `json:"doc_id"`
	Version  int               `json:"version"`
	Document docmodel.Document `json:"document"`
	Stats    walker.Stats      `json:"stats"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.sessions.List()})
}

// handleCreateDocument opens a session, optionally importing an uploaded file. A failed
// import creates nothing.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r, false)
	if !ok {
		return
	}

	sess := editor.NewSession()
	if data != nil {
		imp, err := s.orchestrator.Converter().Decode(data, filename)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		sess.Install(imp, filename)
	}
	s.sessions.Put(sess)
	s.metrics.SetSessions(s.sessions.Len())
	s.log.Info("session opened", "doc_id", sess.ID, "filename", filename, "bytes", len(data))

	s.writeDocument(w, r, sess, http.StatusCreated)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, sess, http.StatusOK)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.sessions.Delete(docID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.SetSessions(s.sessions.Len())
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}

// handleSetContent replaces the body markup. Accepts {"html": "..."} or a raw text/html body.
func (s *Server) handleSetContent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	content := string(body)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req struct {
			HTML string `json:"html"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
		content = req.HTML
	}

	if err := sess.SetContent(content); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeDocument(w, r, sess, http.StatusOK)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var cmd editor.Command
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&cmd); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	err = sess.Apply(cmd)
	s.metrics.ObserveCommand(cmd.Name, err)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("command %s: %w", cmd.Name, err))
		return
	}
	s.writeDocument(w, r, sess, http.StatusOK)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := editor.WalkSnapshot(snap.HTML)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelResponse{
		DocID:    snap.ID,
		Version:  snap.Version,
		Document: res.Document,
		Stats:    res.Stats,
	})
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, sess *editor.Session, code int) {
	snap, err := sess.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	content, err := sess.Content()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, code, documentResponse{Snapshot: snap, HTML: string(snap.HTML), Content: content})
}
