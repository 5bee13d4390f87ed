package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	TenderdocAPIKey string

	// Chat model
	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string

	// Sessions
	MaxQuestions           int
	SessionTTL             time.Duration
	KnowledgeMaxItemTokens int

	// Upload limits
	MaxUploadBytes int64

	// Parsing
	PDFFallbackPdftotext bool
	IndentCeiling        int

	// Stats
	LLMStatsWindow time.Duration
}

// LoadDotEnv reads variables from .env files into the environment without
// overriding values already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		TenderdocAPIKey: os.Getenv("TENDERDOC_API_KEY"),

		LLMProvider: envOr("LLM_PROVIDER", "openai"),
		LLMAPIKey:   envOr("LLM_API_KEY", os.Getenv("API_KEY")),
		LLMBaseURL:  envOr("LLM_BASE_URL", os.Getenv("BASE_URL")),
		LLMModel:    envOr("LLM_MODEL", os.Getenv("DEFAULT_MODEL")),

		MaxQuestions:           envInt("MAX_QUESTIONS", 10),
		SessionTTL:             envDuration("SESSION_TTL", 1*time.Hour),
		KnowledgeMaxItemTokens: envInt("KNOWLEDGE_MAX_ITEM_TOKENS", 0),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		IndentCeiling:        envInt("INDENT_CEILING", 25),

		LLMStatsWindow: envDuration("LLM_STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 10
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.KnowledgeMaxItemTokens < 0 {
		cfg.KnowledgeMaxItemTokens = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.IndentCeiling <= 0 {
		cfg.IndentCeiling = 25
	}
	if cfg.LLMStatsWindow <= 0 {
		cfg.LLMStatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.TenderdocAPIKey == "" {
		return fmt.Errorf("TENDERDOC_API_KEY is required")
	}
	switch c.LLMProvider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLMProvider)
	}
	return nil
}

// ChatEnabled reports whether a chat model key is configured. Without one
// the server still parses documents and chat requests get 503.
func (c Config) ChatEnabled() bool {
	return c.LLMAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
