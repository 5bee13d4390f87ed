package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/tenderdoc/internal/config"
	"github.com/dgallion1/tenderdoc/internal/llm"
	"github.com/dgallion1/tenderdoc/internal/sections"
	"github.com/dgallion1/tenderdoc/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for tenderdoc.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	provider llm.Provider
	stats    *llm.Stats
	parser   sections.Parser
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. provider may be nil, in
// which case chat requests fail with 503.
func NewServer(sessions *session.Manager, provider llm.Provider, stats *llm.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		provider: provider,
		stats:    stats,
		parser:   sections.Parser{IndentCeiling: cfg.IndentCeiling},
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.TenderdocAPIKey, s.log))

		r.Get("/api/catalog", s.handleCatalog)
		r.Get("/api/questions", s.handleQuestions)
		r.Post("/api/parse", s.handleParse)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionCtx)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/document", s.handleAttachDocument)
			r.Get("/document", s.handleGetDocument)
			r.Put("/sections", s.handleSelectSections)
			r.Post("/reset", s.handleResetSession)
			r.Post("/chat", s.handleChat)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
