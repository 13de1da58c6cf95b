package pipeline

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// JobKind selects what a worker does with the job's input.
type JobKind string

const (
	// KindImport decodes an uploaded file and re-encodes it in the job's format.
	KindImport JobKind = "import"
	// KindExport encodes a rendered session snapshot in the job's format.
	KindExport JobKind = "export"
)

// JobStatus represents the state of a conversion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single conversion. Its input is a private copy taken at
// submission and is never modified.
type Job struct {
	mu sync.Mutex

	ID    string  `json:"job_id"`
	DocID string  `json:"doc_id"`
	Kind  JobKind `json:"kind"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Format   string    `json:"format"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	input  []byte
	output *Output
	err    error
	done   chan struct{}
}

// NewJob creates a queued job over a copy of input.
func NewJob(kind JobKind, docID, filename, format string, input []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.Must(uuid.NewV4()).String(),
		DocID:       docID,
		Kind:        kind,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Format:      format,
		ContentHash: ContentHashHex(input),
		CreatedAt:   now,
		UpdatedAt:   now,
		input:       bytes.Clone(input),
		done:        make(chan struct{}),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs whose last update is older than the TTL.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if !snap.Finished() {
			continue
		}
		if now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Input returns the bytes the job was submitted with.
func (j *Job) Input() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.input
}

// Complete records a successful result and releases waiters.
func (j *Job) Complete(out *Output) {
	j.finish(out, nil, StatusCompleted, "done")
}

// Fail records err and releases waiters.
func (j *Job) Fail(err error, phase string) {
	j.finish(nil, err, StatusFailed, phase)
}

func (j *Job) finish(out *Output, err error, status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status == StatusCompleted || j.Status == StatusFailed {
		return
	}
	j.output = out
	j.err = err
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	j.input = nil
	close(j.done)
}

// Done is closed once the job completes or fails.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the output or the failure. Both are nil while the job is still pending.
func (j *Job) Result() (*Output, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.err
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id,omitempty"`
	Kind        JobKind   `json:"kind"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Format      string    `json:"format"`
	ContentHash string    `json:"content_hash,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Finished reports whether the job reached a terminal status.
func (s JobSnapshot) Finished() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Kind:        j.Kind,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Format:      j.Format,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.err != nil {
		snap.Error = UserMessage(j.err)
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
