package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docedit/internal/metrics"
)

// ErrQueueFull is returned by Submit when every queue slot is taken.
var ErrQueueFull = errors.New("job queue is full")

// Options sizes the orchestrator.
type Options struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
}

// Orchestrator manages the background conversion workers.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	conv    *Converter
	metrics *metrics.Metrics
	log     *slog.Logger
	opts    Options

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(opts Options, conv *Converter, log *slog.Logger) *Orchestrator {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 1
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = 1
	}
	return &Orchestrator{
		jobs:    NewJobStore(opts.JobTTL),
		queue:   make(chan *Job, opts.MaxQueueSize),
		conv:    conv,
		metrics: conv.Metrics,
		log:     log,
		opts:    opts,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.opts.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.reportDepth()
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired jobs removed", "count", n)
				}
			}
		}
	}()
}

// Stop shuts the workers down. Jobs still queued are failed so their waiters return.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
	for job := range o.queue {
		job.Fail(errors.New("server shutting down"), "queued")
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.reportDepth()
		return nil
	default:
		job.Fail(ErrQueueFull, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.opts.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Converter returns the converter the workers use, for synchronous requests.
func (o *Orchestrator) Converter() *Converter {
	return o.conv
}

func (o *Orchestrator) reportDepth() {
	if o.metrics != nil {
		o.metrics.SetQueueDepth(len(o.queue))
	}
}

// Await blocks until job finishes or ctx is done.
func Await(ctx context.Context, job *Job) (*Output, error) {
	select {
	case <-job.Done():
		return job.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
