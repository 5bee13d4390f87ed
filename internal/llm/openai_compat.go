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

// OpenAICompatClient streams from any OpenAI-compatible /chat/completions
// endpoint. The defaults target DashScope's compatible mode.
type OpenAICompatClient struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
	loop       streamLoop
}

func NewOpenAICompat(cfg Config, log *slog.Logger, stats *Stats) *OpenAICompatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	log = log.With("provider", "openai", "model", cfg.Model)
	return &OpenAICompatClient{
		cfg:        cfg,
		httpClient: newHTTPClient(),
		log:        log,
		loop:       streamLoop{log: log, stats: stats},
	}
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type chatCompletionRequest struct {
	Model         string         `json:"model"`
	Messages      []Message      `json:"messages"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
	Temperature   float64        `json:"temperature,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAICompatClient) Model() string { return c.cfg.Model }

// Stream sends the chat request and yields content deltas as they arrive.
func (c *OpenAICompatClient) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return c.loop.run(ctx, c, req)
}

func (c *OpenAICompatClient) open(ctx context.Context, req ChatRequest) (*http.Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	body, err := json.Marshal(chatCompletionRequest{
		Model:         model,
		Messages:      req.Messages,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completions: %w", err)
	}
	if err := checkStatus(resp, "chat completions"); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *OpenAICompatClient) fragments(body io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for ev, err := range readEvents(body) {
			if err != nil {
				yield("", err)
				return
			}
			if ev.Data == "[DONE]" {
				return
			}
			if ev.Data == "" {
				continue
			}
			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				yield("", fmt.Errorf("decode chunk: %w", err))
				return
			}
			if chunk.Error != nil {
				yield("", fmt.Errorf("chat completions error: %s", chunk.Error.Message))
				return
			}
			if chunk.Usage != nil && len(chunk.Choices) == 0 {
				c.log.Info("llm usage",
					"prompt_tokens", chunk.Usage.PromptTokens,
					"completion_tokens", chunk.Usage.CompletionTokens,
					"total_tokens", chunk.Usage.TotalTokens,
				)
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !yield(chunk.Choices[0].Delta.Content, nil) {
					return
				}
			}
		}
	}
}

// Close releases resources.
func (c *OpenAICompatClient) Close() {
	c.httpClient.CloseIdleConnections()
}
