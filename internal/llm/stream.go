package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"
)

// streamer is the per-provider half of a streaming call: opening the HTTP
// stream and turning its body into text fragments.
type streamer interface {
	open(ctx context.Context, req ChatRequest) (*http.Response, error)
	fragments(body io.Reader) iter.Seq2[string, error]
}

// streamLoop opens the stream with retries, then relays fragments. Once a
// fragment has been yielded the call is never retried.
type streamLoop struct {
	log     *slog.Logger
	stats   *Stats
	backoff func(attempt int) time.Duration
}

func (l streamLoop) run(ctx context.Context, s streamer, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		start := time.Now()
		rec := streamRecord{firstFragment: -1, outcome: OutcomeFailed}
		defer func() {
			rec.total = time.Since(start)
			l.stats.record(rec)
		}()

		resp, err := l.openWithRetry(ctx, s, req)
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		for frag, err := range s.fragments(resp.Body) {
			if err != nil {
				if ctx.Err() != nil {
					err = ctx.Err()
				}
				yield("", fmt.Errorf("read stream: %w", err))
				return
			}
			if frag == "" {
				continue
			}
			if rec.fragments == 0 {
				rec.firstFragment = time.Since(start)
			}
			rec.fragments++
			if !yield(frag, nil) {
				rec.outcome = OutcomeAbandoned
				return
			}
		}
		rec.outcome = OutcomeCompleted
	}
}

func (l streamLoop) openWithRetry(ctx context.Context, s streamer, req ChatRequest) (*http.Response, error) {
	backoff := l.backoff
	if backoff == nil {
		backoff = Backoff
	}
	var lastErr error
	for attempt := range MaxRetries {
		resp, err := s.open(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		l.log.Warn("retryable llm error", "attempt", attempt, "error", err)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// checkStatus converts a non-200 response into an error, closing its body.
func checkStatus(resp *http.Response, api string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
	return fmt.Errorf("%s status %d: %s", api, resp.StatusCode, truncate(string(body), 500))
}
