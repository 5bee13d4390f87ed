// Package batch parses many tender documents with bounded concurrency.
package batch

import (
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusParsing    Status = "parsing"
	StatusCompleted  Status = "completed"
	StatusDupSkipped Status = "duplicate"
	StatusFailed     Status = "failed"
)

// Job is one document to parse. Data, when set, is used instead of reading
// Path.
type Job struct {
	ID       string
	Path     string
	Filename string
	Data     []byte

	mu          sync.Mutex
	status      Status
	errors      []string
	contentHash string
	duplicateOf string
	doc         *doctree.Document
	startedAt   time.Time
	finishedAt  time.Time
}

// NewJob creates a pending job for a file on disk.
func NewJob(path, filename string) *Job {
	return &Job{
		ID:       uuid.NewString(),
		Path:     path,
		Filename: filename,
		status:   StatusPending,
	}
}

func (j *Job) SetStatus(s Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = s
	switch s {
	case StatusExtracting:
		j.startedAt = time.Now()
	case StatusCompleted, StatusDupSkipped, StatusFailed:
		j.finishedAt = time.Now()
	}
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
}

func (j *Job) setDocument(doc *doctree.Document) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc = doc
}

func (j *Job) setHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.contentHash = hash
}

func (j *Job) markDuplicate(of string) {
	j.mu.Lock()
	j.duplicateOf = of
	j.mu.Unlock()
	j.SetStatus(StatusDupSkipped)
}

// Result is a JSON-safe summary of a finished job.
type Result struct {
	Filename    string            `json:"filename"`
	Status      Status            `json:"status"`
	ContentHash string            `json:"content_hash,omitempty"`
	DuplicateOf string            `json:"duplicate_of,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	DurationMs  int64             `json:"duration_ms"`
	Document    *doctree.Document `json:"document,omitempty"`
}

func (j *Job) Result() Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	r := Result{
		Filename:    j.Filename,
		Status:      j.status,
		ContentHash: j.contentHash,
		DuplicateOf: j.duplicateOf,
		Errors:      slices.Clone(j.errors),
		Document:    j.doc,
	}
	if !j.startedAt.IsZero() && !j.finishedAt.IsZero() {
		r.DurationMs = j.finishedAt.Sub(j.startedAt).Milliseconds()
	}
	return r
}
