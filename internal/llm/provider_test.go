package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noBackoff(int) time.Duration { return time.Millisecond }

func collect(t *testing.T, p Provider, req ChatRequest) (string, error) {
	t.Helper()
	var b strings.Builder
	for frag, err := range p.Stream(context.Background(), req) {
		if err != nil {
			return b.String(), err
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"openai", "*llm.OpenAICompatClient"},
		{"anthropic", "*llm.AnthropicClient"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(Config{Provider: tt.provider}, testLogger(), nil)
			if err != nil {
				t.Fatalf("NewProvider(%q) returned error: %v", tt.provider, err)
			}
			if got := fmt.Sprintf("%T", p); got != tt.wantType {
				t.Errorf("NewProvider(%q) type = %s, want %s", tt.provider, got, tt.wantType)
			}
		})
	}
}

func TestNewProviderErrors(t *testing.T) {
	if _, err := NewProvider(Config{}, testLogger(), nil); err == nil || err.Error() != "llm provider not specified" {
		t.Errorf("unexpected error for empty provider: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "nope"}, testLogger(), nil); err == nil || err.Error() != "unknown llm provider: nope" {
		t.Errorf("unexpected error for unknown provider: %v", err)
	}
}

func TestOpenAICompatDefaults(t *testing.T) {
	c := NewOpenAICompat(Config{}, testLogger(), nil)
	if c.cfg.BaseURL != DefaultOpenAIBaseURL {
		t.Errorf("expected default base URL, got %q", c.cfg.BaseURL)
	}
	if c.Model() != "qwen3-max" {
		t.Errorf("expected default model qwen3-max, got %q", c.Model())
	}
}

func TestOpenAICompatStream(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"สวัส\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ดี\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"prompt_tokens\":10,\"completion_tokens\":2,\"total_tokens\":12}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stats := NewStats(time.Hour)
	c := NewOpenAICompat(Config{BaseURL: srv.URL + "/", APIKey: "k", Model: "m1"}, testLogger(), stats)
	defer c.Close()

	text, err := collect(t, c, ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "สวัสดี" {
		t.Errorf("expected %q, got %q", "สวัสดี", text)
	}
	if got.Model != "m1" || !got.Stream || got.StreamOptions == nil || !got.StreamOptions.IncludeUsage {
		t.Errorf("unexpected request %+v", got)
	}
	snap := stats.Snapshot()
	if snap.Total.Count != 1 || snap.FirstFragment.Count != 1 || snap.Completed != 1 || snap.Fragments != 2 {
		t.Errorf("expected one completed stream of two fragments, got %+v", snap)
	}
}

func TestOpenAICompatRetriesBeforeFirstFragment(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), nil)
	c.loop.backoff = noBackoff

	text, err := collect(t, c, ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" || calls.Load() != 2 {
		t.Errorf("expected ok after 2 calls, got %q after %d", text, calls.Load())
	}
}

func TestOpenAICompatGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), nil)
	c.loop.backoff = noBackoff

	_, err := collect(t, c, ChatRequest{})
	if !IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if calls.Load() != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, calls.Load())
	}
}

func TestOpenAICompatClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), nil)
	c.loop.backoff = noBackoff

	_, err := collect(t, c, ChatRequest{})
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestOpenAICompatStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"par\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"error\":{\"message\":\"quota exceeded\"}}\n\n")
	}))
	defer srv.Close()

	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), nil)
	text, err := collect(t, c, ChatRequest{})
	if text != "par" {
		t.Errorf("expected partial text %q, got %q", "par", text)
	}
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected quota error, got %v", err)
	}
}

func TestStreamStopsWhenConsumerBreaks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for range 5 {
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stats := NewStats(time.Hour)
	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), stats)
	n := 0
	for _, err := range c.Stream(context.Background(), ChatRequest{}) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected 1 fragment, got %d", n)
	}
	snap := stats.Snapshot()
	if snap.Total.Count != 0 {
		t.Error("abandoned stream should not record a total latency")
	}
	if snap.Abandoned != 1 || snap.FirstFragment.Count != 1 {
		t.Errorf("expected one abandoned stream with a first fragment, got %+v", snap)
	}
}

func TestStreamCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewOpenAICompat(Config{BaseURL: srv.URL}, testLogger(), nil)
	c.loop.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	var gotErr error
	for _, err := range c.Stream(ctx, ChatRequest{}) {
		gotErr = err
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", gotErr)
	}
}

func TestAnthropicStream(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n")
		fmt.Fprint(w, "event: ping\ndata: {\"type\":\"ping\"}\n\n")
		fmt.Fprint(w, "event: content_block_delta\ndata: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n")
		fmt.Fprint(w, "event: message_delta\ndata: {\"type\":\"message_delta\",\"usage\":{\"output_tokens\":2}}\n\n")
		fmt.Fprint(w, "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropic(Config{BaseURL: srv.URL, APIKey: "secret"}, testLogger(), nil)
	text, err := collect(t, c, ChatRequest{Messages: []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", text)
	}
	if got.System != "be brief" {
		t.Errorf("expected system prompt lifted out, got %q", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != RoleUser {
		t.Errorf("expected only the user message, got %+v", got.Messages)
	}
	if got.MaxTokens != anthropicDefaultMaxTokens || !got.Stream {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestAnthropicStreamErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	}))
	defer srv.Close()

	c := NewAnthropic(Config{BaseURL: srv.URL}, testLogger(), nil)
	_, err := collect(t, c, ChatRequest{})
	if err == nil || !strings.Contains(err.Error(), "overloaded_error") {
		t.Errorf("expected overloaded error, got %v", err)
	}
}

func TestRetryableErrorDetection(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RetryableError{StatusCode: 503, Message: "x"})
	if !IsRetryable(err) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("expected plain error not to be retryable")
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, want in [%v, %v)", attempt, d, base, base+base/2)
		}
	}
}
