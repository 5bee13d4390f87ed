// Package llm streams chat completions from hosted language models.
package llm

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"time"
)

// Provider streams chat completions. Breaking out of the returned sequence
// cancels the underlying request.
type Provider interface {
	Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error]
	Model() string
	Close()
}

// Role values for Message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a chat completion request. An empty Model uses the
// provider's configured model.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Config configures an LLM provider.
type Config struct {
	Provider string // openai, anthropic
	Model    string
	BaseURL  string
	APIKey   string
}

// Defaults for the OpenAI-compatible provider point at DashScope.
const (
	DefaultOpenAIBaseURL    = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"
	DefaultOpenAIModel      = "qwen3-max"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-sonnet-4-5-20250929"
)

// NewProvider creates an LLM provider from configuration. stats may be nil.
func NewProvider(cfg Config, log *slog.Logger, stats *Stats) (Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAICompat(cfg, log, stats), nil
	case "anthropic":
		return NewAnthropic(cfg, log, stats), nil
	case "":
		return nil, fmt.Errorf("llm provider not specified")
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	// No overall timeout: a streamed answer can run for minutes. The request
	// context bounds it instead.
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = 60 * time.Second
	return &http.Client{Transport: tr}
}
