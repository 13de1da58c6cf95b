package pipeline

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docedit/internal/export"
	"github.com/dgallion1/docedit/internal/markup"
	"github.com/dgallion1/docedit/internal/metrics"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/walker"
)

// Output is a finished conversion.
type Output struct {
	Data        []byte       `json:"-"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Title       string       `json:"title,omitempty"`
	ContentHash string       `json:"content_hash"`
	Stats       walker.Stats `json:"stats"`
}

// Converter runs decode and encode steps. It is safe for concurrent use; the API calls it
// directly for synchronous requests and workers call it for queued jobs.
type Converter struct {
	Import       parser.Options
	ExportPrefix string
	DefaultName  string
	Metrics      *metrics.Metrics
}

// Decode imports a foreign file into a markup tree.
func (c *Converter) Decode(data []byte, filename string) (*parser.Imported, error) {
	start := time.Now()
	imp, err := parser.Import(bytes.NewReader(data), filename, c.Import)
	c.observe(metrics.DirectionImport, strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."), start, err)
	return imp, err
}

// Encode walks a rendered snapshot and serializes the resulting model. original names the
// file the session was opened from and drives the download name.
func (c *Converter) Encode(snapshot []byte, original, format string) (*Output, error) {
	root, err := markup.ParseString(string(snapshot))
	if err != nil {
		return nil, &export.EncodeError{Format: format, Err: err}
	}
	return c.encodeTree(root, original, format)
}

// Convert decodes data and encodes it as format in one step.
func (c *Converter) Convert(data []byte, filename, format string) (*Output, error) {
	imp, err := c.Decode(data, filename)
	if err != nil {
		return nil, err
	}
	out, err := c.encodeTree(imp.Root, filename, format)
	if err != nil {
		return nil, err
	}
	out.Title = imp.Title
	return out, nil
}

func (c *Converter) encodeTree(root *markup.Node, original, format string) (*Output, error) {
	s, err := export.ForFormat(format)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := walker.Walk(root)
	var buf bytes.Buffer
	err = export.Serialize(s, res.Document, &buf)
	c.observe(metrics.DirectionExport, s.Extension(), start, err)
	if err != nil {
		return nil, err
	}

	data := buf.Bytes()
	return &Output{
		Data:        data,
		Filename:    c.outputName(original, s),
		ContentType: s.ContentType(),
		ContentHash: ContentHashHex(data),
		Stats:       res.Stats,
	}, nil
}

// OutputName is the filename an export of original to format is given.
func (c *Converter) OutputName(original, format string) (string, error) {
	s, err := export.ForFormat(format)
	if err != nil {
		return "", err
	}
	return c.outputName(original, s), nil
}

func (c *Converter) outputName(original string, s export.Serializer) string {
	return export.ExportName(original, s.Extension(), c.ExportPrefix, c.defaultName())
}

func (c *Converter) defaultName() string {
	if c.DefaultName == "" {
		return "document.docx"
	}
	return c.DefaultName
}

func (c *Converter) observe(direction, format string, start time.Time, err error) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.ObserveConversion(direction, format, time.Since(start), err)
}

// UserMessage maps a conversion failure to the text shown to the user.
func UserMessage(err error) string {
	var decErr *parser.DecodeError
	if errors.As(err, &decErr) {
		return decErr.UserMessage()
	}
	var encErr *export.EncodeError
	if errors.As(err, &encErr) {
		return encErr.UserMessage()
	}
	return err.Error()
}
