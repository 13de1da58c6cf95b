package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/markup"
)

// UserMessage is what the user sees for any import failure.
const UserMessage = "Error opening document. Please check file format."

// ErrUnsupported is returned for file extensions no importer handles.
var ErrUnsupported = errors.New("unsupported file extension")

// Imported is an importer's output: an editable markup tree whose <body> holds the content.
type Imported struct {
	Title string
	Root  *markup.Node
}

// Parser converts raw document bytes into a markup tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*Imported, error)
}

// Options carries the configurable parts of importing.
type Options struct {
	StyleMap          []StyleMapping
	FallbackPdftotext bool
}

// DecodeError reports that the input bytes are not a readable instance of their format.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *DecodeError) UserMessage() string { return UserMessage }

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{StyleMap: opts.StyleMap}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Import picks a parser by extension and runs it. Every failure comes back as a *DecodeError.
func Import(r io.Reader, filename string, opts Options) (*Imported, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: err}
	}
	imp, err := p.Parse(r, filename)
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: err}
	}
	return imp, nil
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// wrap builds the final document around body content with the importer stylesheet.
func wrap(title string, children []*markup.Node) *Imported {
	return &Imported{
		Title: title,
		Root:  markup.Document(Stylesheet(), children...),
	}
}
