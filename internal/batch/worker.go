package batch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgallion1/tenderdoc/internal/extractor"
	"github.com/dgallion1/tenderdoc/internal/sections"
)

// DefaultConcurrency bounds parallel extractions when none is configured.
const DefaultConcurrency = 4

// Worker extracts and parses documents. A Worker remembers the content
// hashes it has seen and skips repeated documents.
type Worker struct {
	parser sections.Parser
	opts   extractor.Options
	log    *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> filename
}

func NewWorker(parser sections.Parser, opts extractor.Options, log *slog.Logger) *Worker {
	return &Worker{
		parser: parser,
		opts:   opts,
		log:    log,
		seen:   make(map[string]string),
	}
}

// Process runs extraction and parsing for one job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract
	job.SetStatus(StatusExtracting)
	data := job.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(job.Path)
		if err != nil {
			log.Error("read failed", "error", err)
			job.AddError(fmt.Sprintf("read: %s", err))
			job.SetStatus(StatusFailed)
			return
		}
	}

	hash := extractor.ContentHashHex(data)
	job.setHash(hash)
	if first, dup := w.claim(hash, job.Filename); dup {
		log.Info("duplicate document, skipping", "same_as", first)
		job.markDuplicate(first)
		return
	}

	if err := ctx.Err(); err != nil {
		w.release(hash)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}

	text, err := extractor.ExtractFile(bytes.NewReader(data), job.Filename, w.opts)
	if err != nil {
		// A later copy under another name or a live context may still succeed.
		w.release(hash)
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed)
		return
	}

	// Phase 2: Parse
	job.SetStatus(StatusParsing)
	doc := w.parser.Parse(text)
	job.setDocument(doc)
	log.Info("document parsed", "sections_found", doc.TotalSections, "missing", len(doc.Missing))
	job.SetStatus(StatusCompleted)
}

// claim records hash for filename and reports the earlier filename if the
// hash was already seen.
func (w *Worker) claim(hash, filename string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if first, ok := w.seen[hash]; ok {
		return first, true
	}
	w.seen[hash] = filename
	return "", false
}

// release forgets hash after the claiming job failed.
func (w *Worker) release(hash string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, hash)
}

// Run processes jobs with at most maxConcurrent in flight and returns once
// all of them have finished. Results are reported through the jobs.
func (w *Worker) Run(ctx context.Context, jobs []*Job, maxConcurrent int) {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultConcurrency
	}
	done := make(chan int, len(jobs))
	sem := make(chan struct{}, maxConcurrent)

	for i, job := range jobs {
		sem <- struct{}{}
		go func(i int, job *Job) {
			defer func() { <-sem }()
			w.Process(ctx, job)
			done <- i
		}(i, job)
	}

	failed := 0
	for range jobs {
		i := <-done
		if jobs[i].Status() == StatusFailed {
			failed++
		}
	}
	w.log.Info("batch complete", "jobs", len(jobs), "failed", failed)
}
