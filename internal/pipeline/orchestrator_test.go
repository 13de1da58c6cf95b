package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docedit/internal/export"
	"github.com/dgallion1/docedit/internal/metrics"
	"github.com/dgallion1/docedit/internal/parser"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConverter() *Converter {
	return &Converter{ExportPrefix: "edited-", DefaultName: "document.docx", Metrics: metrics.New(time.Hour)}
}

func TestConverter_Convert(t *testing.T) {
	conv := testConverter()
	out, err := conv.Convert([]byte("first paragraph\n\nsecond paragraph"), "notes.txt", "md")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	md := string(out.Data)
	if !strings.Contains(md, "first paragraph") || !strings.Contains(md, "second paragraph") {
		t.Errorf("expected both paragraphs in output, got %q", md)
	}
	if out.Filename != "edited-notes.md" {
		t.Errorf("expected filename %q, got %q", "edited-notes.md", out.Filename)
	}
	if out.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", out.Title)
	}
	if out.ContentHash != ContentHashHex(out.Data) {
		t.Error("expected content hash of the output bytes")
	}
	if snap := conv.Metrics.Stats.Snapshot("import:txt"); snap.Count != 1 {
		t.Errorf("expected 1 import sample, got %d", snap.Count)
	}
}

func TestConverter_EncodeSnapshot(t *testing.T) {
	conv := testConverter()
	out, err := conv.Encode([]byte(`<html><body><h1>Title</h1><p>body</p></body></html>`), "", "docx")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out.Filename != "document.docx" {
		t.Errorf("expected default filename, got %q", out.Filename)
	}
	if !strings.HasPrefix(string(out.Data), "PK") {
		t.Error("expected a zip package")
	}
}

func TestConverter_DecodeError(t *testing.T) {
	_, err := testConverter().Convert([]byte("not a zip"), "broken.docx", "docx")
	var decErr *parser.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if UserMessage(err) != parser.UserMessage {
		t.Errorf("expected message %q, got %q", parser.UserMessage, UserMessage(err))
	}
}

func TestConverter_UnknownFormat(t *testing.T) {
	_, err := testConverter().Encode([]byte(`<p>x</p>`), "", "rtf")
	if !errors.Is(err, export.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestConverter_OutputName(t *testing.T) {
	c := testConverter()
	name, err := c.OutputName("report.md", "docx")
	if err != nil || name != "edited-report.docx" {
		t.Errorf("expected edited-report.docx, got %q (%v)", name, err)
	}
	name, err = c.OutputName("", "pdf")
	if err != nil || name != "document.pdf" {
		t.Errorf("expected document.pdf, got %q (%v)", name, err)
	}
	if _, err := c.OutputName("a.md", "rtf"); !errors.Is(err, export.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	o := NewOrchestrator(Options{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}, testConverter(), testLogger())
	o.Start(context.Background())
	defer o.Stop()

	imp := NewJob(KindImport, "", "notes.txt", "html", []byte("hello"))
	exp := NewJob(KindExport, "doc-1", "report.docx", "pdf", []byte(`<p>hello</p>`))
	for _, job := range []*Job{imp, exp} {
		if err := o.Submit(job); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := Await(ctx, imp)
	if err != nil {
		t.Fatalf("import job: %v", err)
	}
	if !strings.Contains(string(out.Data), "hello") {
		t.Errorf("expected html output to contain the text, got %q", out.Data)
	}

	out, err = Await(ctx, exp)
	if err != nil {
		t.Fatalf("export job: %v", err)
	}
	if !strings.HasPrefix(string(out.Data), "%PDF-") {
		t.Error("expected a PDF document")
	}
	if out.Filename != "edited-report.pdf" {
		t.Errorf("expected filename %q, got %q", "edited-report.pdf", out.Filename)
	}
	if o.GetJob(exp.ID).Snapshot().Status != StatusCompleted {
		t.Error("expected completed status in the store")
	}
}

func TestOrchestrator_FailedJob(t *testing.T) {
	o := NewOrchestrator(Options{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, testConverter(), testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob(KindImport, "", "scan.pdf", "docx", []byte("garbage"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := Await(ctx, job); err == nil {
		t.Fatal("expected the job to fail")
	}
	if snap := job.Snapshot(); snap.Error != parser.UserMessage {
		t.Errorf("expected error %q, got %q", parser.UserMessage, snap.Error)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(Options{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, testConverter(), testLogger())

	first := NewJob(KindExport, "", "", "docx", []byte(`<p>a</p>`))
	second := NewJob(KindExport, "", "", "docx", []byte(`<p>b</p>`))
	if err := o.Submit(first); err != nil {
		t.Fatalf("submit first: %v", err)
	}
	err := o.Submit(second)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	select {
	case <-first.Done():
	default:
		t.Error("expected queued job to be failed on stop")
	}
}

func TestAwait_ContextDone(t *testing.T) {
	job := NewJob(KindExport, "", "", "docx", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Await(ctx, job); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
