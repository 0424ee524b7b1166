package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/sercha-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server exposing the retrieval core's three
// informative endpoints plus ambient health/version probes.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	orchestrator driving.Orchestrator
	ingestor     driving.Ingestor
	evaluator    driving.Evaluator

	dbPinger    Pinger
	redisPinger Pinger // optional

	authAdapter *auth.Adapter // nil disables the auth middleware
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server. authAdapter may be nil, in which
// case the /api/v1/* surface is served with no bearer-token check.
func NewServer(
	cfg Config,
	orchestrator driving.Orchestrator,
	ingestor driving.Ingestor,
	evaluator driving.Evaluator,
	dbPinger Pinger,
	redisPinger Pinger,
	authAdapter *auth.Adapter,
) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		version:      cfg.Version,
		orchestrator: orchestrator,
		ingestor:     ingestor,
		evaluator:    evaluator,
		dbPinger:     dbPinger,
		redisPinger:  redisPinger,
		authAdapter:  authAdapter,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	chat := http.Handler(http.HandlerFunc(s.handleChat))
	ingest := http.Handler(http.HandlerFunc(s.handleIngest))
	evaluate := http.Handler(http.HandlerFunc(s.handleEvaluationRun))

	if s.authAdapter != nil {
		authMiddleware := NewAuthMiddleware(s.authAdapter)
		chat = authMiddleware.Authenticate(chat)
		ingest = authMiddleware.Authenticate(ingest)
	}

	s.router.Handle("POST /api/v1/chat", chat)
	s.router.Handle("POST /api/v1/ingest", ingest)

	// Evaluation is informative tooling, not part of the auth-guarded surface.
	s.router.Handle("POST /api/evaluation/run", evaluate)
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
