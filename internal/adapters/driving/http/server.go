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

	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	searchService   driving.SearchService
	realtimeService driving.RealtimeService

	// Infrastructure
	taskQueue   driven.TaskQueue
	auth        driven.AuthAdapter
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
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

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	searchService driving.SearchService,
	realtimeService driving.RealtimeService,
	taskQueue driven.TaskQueue,
	auth driven.AuthAdapter,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		searchService:   searchService,
		realtimeService: realtimeService,
		taskQueue:       taskQueue,
		auth:            auth,
		db:              db,
		redisClient:     redisClient,
	}

	s.setupRoutes()

	recovery := NewRecoveryMiddleware()
	logging := NewLoggingMiddleware()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Knowledge endpoints
	s.router.HandleFunc("POST /api/v1/knowledge/search", s.handleSearch)
	s.router.HandleFunc("POST /api/v1/knowledge/rebuild", s.handleRebuild)

	// Realtime endpoints
	s.router.HandleFunc("POST /api/v1/realtime/token", s.handleRealtimeToken)
	s.router.HandleFunc("POST /api/v1/realtime/invoke-tool", s.handleInvokeTool)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
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
