package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/tenderdoc/internal/api"
	"github.com/dgallion1/tenderdoc/internal/config"
	"github.com/dgallion1/tenderdoc/internal/llm"
	"github.com/dgallion1/tenderdoc/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		log.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the chat model.
	stats := llm.NewStats(cfg.LLMStatsWindow)
	provider, err := newProvider(cfg, log, stats)
	if err != nil {
		log.Error("failed to create llm provider", "error", err)
		os.Exit(1)
	}
	model := "none"
	if provider != nil {
		model = provider.Model()
	} else {
		log.Warn("LLM_API_KEY not set, chat disabled")
	}

	// Initialize sessions.
	sessions := session.NewManager(session.ManagerConfig{
		TTL: cfg.SessionTTL,
		Session: session.Options{
			MaxQuestions:  cfg.MaxQuestions,
			MaxItemTokens: cfg.KnowledgeMaxItemTokens,
		},
	}, log)
	sessions.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(sessions, provider, stats, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		// Chat responses stream for as long as the model takes.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		sessions.Stop()
		if provider != nil {
			provider.Close()
		}
	}()

	log.Info("starting tenderdoc",
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"model", model,
		"max_questions", cfg.MaxQuestions,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newProvider returns nil when no chat model key is configured.
func newProvider(cfg config.Config, log *slog.Logger, stats *llm.Stats) (llm.Provider, error) {
	if !cfg.ChatEnabled() {
		return nil, nil
	}
	return llm.NewProvider(llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
	}, log, stats)
}
