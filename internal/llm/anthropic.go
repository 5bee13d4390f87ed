package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicClient streams from the Anthropic Messages API.
type AnthropicClient struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
	loop       streamLoop
}

func NewAnthropic(cfg Config, log *slog.Logger, stats *Stats) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAnthropicBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	log = log.With("provider", "anthropic", "model", cfg.Model)
	return &AnthropicClient{
		cfg:        cfg,
		httpClient: newHTTPClient(),
		log:        log,
		loop:       streamLoop{log: log, stats: stats},
	}
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
}

type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AnthropicClient) Model() string { return c.cfg.Model }

// Stream sends the chat request and yields text deltas as they arrive.
func (c *AnthropicClient) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return c.loop.run(ctx, c, req)
}

func (c *AnthropicClient) open(ctx context.Context, req ChatRequest) (*http.Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	// System prompts travel outside the message list.
	var system []string
	msgs := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		msgs = append(msgs, m)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Messages:    msgs,
		Stream:      true,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("claude api: %w", err)
	}
	if err := checkStatus(resp, "claude api"); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *AnthropicClient) fragments(body io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for ev, err := range readEvents(body) {
			if err != nil {
				yield("", err)
				return
			}
			if ev.Data == "" {
				continue
			}
			var e anthropicEvent
			if err := json.Unmarshal([]byte(ev.Data), &e); err != nil {
				yield("", fmt.Errorf("decode event: %w", err))
				return
			}
			switch e.Type {
			case "content_block_delta":
				if e.Delta.Type == "text_delta" && e.Delta.Text != "" {
					if !yield(e.Delta.Text, nil) {
						return
					}
				}
			case "message_delta":
				if e.Usage != nil {
					c.log.Info("llm usage", "output_tokens", e.Usage.OutputTokens)
				}
			case "message_stop":
				return
			case "error":
				msg := "unknown error"
				if e.Error != nil {
					msg = e.Error.Type + ": " + e.Error.Message
				}
				yield("", fmt.Errorf("claude error: %s", msg))
				return
			}
		}
	}
}

// Close releases resources.
func (c *AnthropicClient) Close() {
	c.httpClient.CloseIdleConnections()
}
