// Package server exposes the analysis engine over a small JSON HTTP
// API for the editor frontend.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/saishankar404/tidy/pkg/analyzer"
	"github.com/saishankar404/tidy/pkg/chat"
	"github.com/saishankar404/tidy/pkg/store"
)

// Server holds the request handlers and their collaborators. All
// dependencies are injected; there are no package-level singletons.
type Server struct {
	orch      *analyzer.Orchestrator
	assistant *chat.Assistant
	store     *store.Store
	log       *zap.Logger
	validate  *validator.Validate
	origins   map[string]struct{}

	httpServer *http.Server
}

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
}

// New wires the handlers. The store may be nil; history endpoints then
// report unavailability instead of failing at startup.
func New(opts Options, orch *analyzer.Orchestrator, assistant *chat.Assistant, st *store.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origins[origin] = struct{}{}
	}

	s := &Server{
		orch:      orch,
		assistant: assistant,
		store:     st,
		log:       log,
		validate:  validator.New(),
		origins:   origins,
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/user/{userId}", s.handleGetUser)
	mux.HandleFunc("PUT /api/user/{userId}", s.handlePutUser)
	mux.HandleFunc("DELETE /api/user/{userId}", s.handleDeleteUser)

	mux.HandleFunc("POST /api/analysis", s.handleAnalysis)
	mux.HandleFunc("POST /api/analysis/reset-offline", s.handleResetOffline)
	mux.HandleFunc("GET /api/analysis-history/{userId}", s.handleAnalysisHistory)
	mux.HandleFunc("GET /api/analysis-history/{userId}/{sessionId}", s.handleAnalysisSession)

	mux.HandleFunc("POST /api/chat", s.handleChat)

	return s.corsMiddleware(s.logMiddleware(mux))
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
