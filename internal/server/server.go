// Package server provides the HTTP REST API for blueprint requests.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/calebstern/habitforge/internal/db"
	"github.com/calebstern/habitforge/internal/prompts"
	"github.com/calebstern/habitforge/internal/server/middleware"
	"github.com/calebstern/habitforge/internal/transcript"
)

// Config holds server configuration.
type Config struct {
	Port      int
	JWTSecret string
}

// Server is the HTTP API surface. The retry worker runs separately; the only
// coupling is through the blueprint and job tables.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	transcripts *transcript.Client
	validator   *validator.Validate
	logger      *slog.Logger

	promptTemplate string
}

// New creates a server instance wired to the given stores and collaborators.
func New(database *db.DB, transcripts *transcript.Client, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		db:             database,
		transcripts:    transcripts,
		validator:      validator.New(),
		logger:         logger,
		promptTemplate: prompts.MustGet("generation.json", "habit-blueprint"),
	}

	auth := middleware.Auth(NewSupabaseVerifier(cfg.JWTSecret))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /blueprints", auth(http.HandlerFunc(s.handleCreateBlueprint)))
	mux.Handle("GET /blueprints", auth(http.HandlerFunc(s.handleListBlueprints)))
	mux.Handle("GET /blueprints/{id}", auth(http.HandlerFunc(s.handleGetBlueprint)))
	mux.Handle("POST /blueprints/{id}/retry", auth(http.HandlerFunc(s.handleRetryBlueprint)))
	mux.Handle("DELETE /blueprints/{id}", auth(http.HandlerFunc(s.handleDeleteBlueprint)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withCORS(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start listens for requests until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// withCORS adds CORS headers for the browser client.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// parseQueryInt reads an integer query parameter with a default and an
// optional upper bound (0 means unbounded).
func parseQueryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
