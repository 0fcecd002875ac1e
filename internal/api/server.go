// Package api exposes the journal over a small REST surface.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/APWalter/trade-journal/internal/store"
	"github.com/APWalter/trade-journal/internal/syncer"
)

const maxQueryLimit = 1000

// Server serves the journal REST API.
type Server struct {
	store      store.DataStore
	orch       *syncer.Orchestrator
	scheduler  *syncer.Scheduler
	logger     zerolog.Logger
	userID     string
	apiKey     string
	httpServer *http.Server
}

// ServerConfig holds Server dependencies.
type ServerConfig struct {
	Store        store.DataStore
	Orchestrator *syncer.Orchestrator
	Scheduler    *syncer.Scheduler
	Logger       zerolog.Logger
	UserID       string
	Port         int
	APIKey       string
	CORSOrigin   string
}

// NewServer creates the API server and wires its routes.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		store:     cfg.Store,
		orch:      cfg.Orchestrator,
		scheduler: cfg.Scheduler,
		logger:    cfg.Logger,
		userID:    cfg.UserID,
		apiKey:    cfg.APIKey,
	}

	mux := http.NewServeMux()

	// Sync routes
	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("POST /api/sync/all", s.handleSyncAll)

	// Synchronization state routes
	mux.HandleFunc("GET /api/synchronizations", s.handleListSynchronizations)
	mux.HandleFunc("DELETE /api/synchronizations", s.handleDeleteSynchronization)

	// Trade routes
	mux.HandleFunc("GET /api/trades", s.handleListTrades)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, cfg.CORSOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Start serves requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Bool("auth", s.apiKey != "").
		Msg("API server started")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
