package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker processes a single conversion job.
type Worker struct {
	conv *Converter
	log  *slog.Logger
}

func NewWorker(conv *Converter, log *slog.Logger) *Worker {
	return &Worker{conv: conv, log: log}
}

// Process runs one job to completion. The only blocking point is the context check before
// work starts; conversions are CPU-bound and run to the end once begun.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "kind", job.Kind)

	if err := ctx.Err(); err != nil {
		job.Fail(fmt.Errorf("job cancelled: %w", err), "queued")
		return
	}

	job.SetStatus(StatusRunning, string(job.Kind))
	var (
		out *Output
		err error
	)
	switch job.Kind {
	case KindImport:
		out, err = w.conv.Convert(job.Input(), job.Filename, job.Format)
	case KindExport:
		out, err = w.conv.Encode(job.Input(), job.Filename, job.Format)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}

	if err != nil {
		log.Error("conversion failed", "filename", job.Filename, "format", job.Format, "error", err)
		job.Fail(err, string(job.Kind))
		return
	}
	log.Info("conversion complete",
		"filename", out.Filename,
		"bytes", len(out.Data),
		"skipped_tables", out.Stats.SkippedTables,
		"flattened_blocks", out.Stats.FlattenedBlocks,
	)
	job.Complete(out)
}
