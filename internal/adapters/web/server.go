package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"coinassist/internal/adapters/web/handlers"
	"coinassist/internal/application/ports"
	"coinassist/internal/application/usecases"
)

// Server represents the HTTP server
type Server struct {
	port      int
	pipeline  *usecases.Pipeline
	kb        ports.KnowledgePort
	formatter ports.FormatterPort
	history   ports.HistoryPort
	logger    *slog.Logger
	server    *http.Server
}

// NewServer creates a new HTTP server
func NewServer(port int, pipeline *usecases.Pipeline, kb ports.KnowledgePort, formatter ports.FormatterPort, history ports.HistoryPort, logger *slog.Logger) *Server {
	return &Server{
		port:      port,
		pipeline:  pipeline,
		kb:        kb,
		formatter: formatter,
		history:   history,
		logger:    logger,
	}
}

// Routes builds the request multiplexer
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	chatHandler := handlers.NewChatHandler(s.pipeline, s.formatter, s.logger)
	resetHandler := handlers.NewResetHandler(s.pipeline, s.logger)
	healthHandler := handlers.NewHealthHandler(s.kb, s.logger)
	sessionsHandler := handlers.NewSessionsHandler(s.pipeline, s.logger)
	statsHandler := handlers.NewStatsHandler(s.history, s.logger)
	modeHandler := handlers.NewModeHandler(s.pipeline, s.logger)
	statusHandler := handlers.NewStatusHandler(s.pipeline, s.logger)

	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Chat request", "method", r.Method, "path", r.URL.Path)
		chatHandler.Handle(w, r)
	})

	mux.HandleFunc("/api/reset", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Reset request", "method", r.Method, "path", r.URL.Path)
		resetHandler.Handle(w, r)
	})

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Health request", "method", r.Method, "path", r.URL.Path)
		healthHandler.Handle(w, r)
	})

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Sessions request", "method", r.Method, "path", r.URL.Path)
		sessionsHandler.Handle(w, r)
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Stats request", "method", r.Method, "path", r.URL.Path)
		statsHandler.Handle(w, r)
	})

	mux.HandleFunc("/mode/", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Mode request", "method", r.Method, "path", r.URL.Path)
		modeHandler.Handle(w, r)
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Status request", "method", r.Method, "path", r.URL.Path)
		statusHandler.Handle(w, r)
	})

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Routes(),
	}

	s.logger.Info("Starting HTTP server", "port", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
