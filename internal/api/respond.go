package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/editor"
	"github.com/dgallion1/docedit/internal/export"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/pipeline"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures to status codes. Import and export failures carry the
// message the user sees; the cause is only logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		decErr *parser.DecodeError
		encErr *export.EncodeError
	)
	switch {
	case errors.As(err, &decErr):
		s.log.Warn("import failed", "filename", decErr.Filename, "error", decErr.Err, "path", r.URL.Path)
		jsonError(w, decErr.UserMessage(), http.StatusUnprocessableEntity)
	case errors.As(err, &encErr):
		s.log.Error("export failed", "format", encErr.Format, "error", encErr.Err, "path", r.URL.Path)
		jsonError(w, encErr.UserMessage(), http.StatusInternalServerError)
	case errors.Is(err, editor.ErrSessionNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, editor.ErrInvalidSelection),
		errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, parser.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrQueueFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error("request failed", "error", err, "path", r.URL.Path)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// writeOutput sends a finished conversion as a download.
func writeOutput(w http.ResponseWriter, out *pipeline.Output) {
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Filename}))
	w.Header().Set("ETag", `"`+out.ContentHash+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Data)
}

// readUpload reads the multipart "file" field. ok is false when a response was already
// written; a missing file with required unset returns ok with empty name and nil data.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, required bool) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		if !required && errors.Is(err, http.ErrNotMultipart) {
			return "", nil, true
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if !required && errors.Is(err, http.ErrMissingFile) {
			return "", nil, true
		}
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
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

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

func isAsync(r *http.Request) bool {
	v := strings.ToLower(r.URL.Query().Get("async"))
	return v == "1" || v == "true" || v == "yes"
}
