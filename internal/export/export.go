// Package export serializes a docmodel.Document into output formats. Every serializer
// assembles its output in memory and writes to the caller only once assembly succeeded.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/docmodel"
)

// UserMessage is what the user sees for any export failure.
const UserMessage = "Error saving document. Please try again."

// Serializer converts a document model into one output format.
type Serializer interface {
	// Build assembles the full output.
	Build(doc docmodel.Document) ([]byte, error)
	Extension() string
	ContentType() string
}

// EncodeError reports that assembling the output failed. No bytes were written.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *EncodeError) UserMessage() string { return UserMessage }

// ErrUnsupportedFormat is returned by ForFormat for unknown names.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists the accepted format names.
var Formats = []string{"docx", "md", "pdf", "html"}

// ForFormat returns the serializer for a format name or file extension.
func ForFormat(name string) (Serializer, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "", "docx":
		return &DOCXSerializer{}, nil
	case "md", "markdown":
		return &MarkdownSerializer{}, nil
	case "pdf":
		return &PDFSerializer{}, nil
	case "html", "htm":
		return &HTMLSerializer{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, name)
}

// Serialize runs s and copies the result to w. Assembly failures are returned as *EncodeError
// and leave w untouched.
func Serialize(s Serializer, doc docmodel.Document, w io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &EncodeError{Format: s.Extension(), Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	data, err := s.Build(doc)
	if err != nil {
		return &EncodeError{Format: s.Extension(), Err: err}
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.Extension(), err)
	}
	return nil
}

// ExportName derives the download name: prefix + the original base name with its extension
// swapped to ext. Without an original name the fallback is used, also with ext applied.
func ExportName(original, ext, prefix, fallback string) string {
	ext = "." + strings.TrimPrefix(ext, ".")
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if original == "" || base == "." || base == "/" {
		return strings.TrimSuffix(fallback, filepath.Ext(fallback)) + ext
	}
	return prefix + strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
