// Package api exposes the session layer over HTTP and WebSocket for
// local tooling. All endpoints are JSON; the WebSocket endpoint streams
// session events.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lookbusy1344/riscv-vm/service"
)

// Server represents the HTTP API server
type Server struct {
	runner  *service.Runner
	mux     *http.ServeMux
	server  *http.Server
	listen  string
	version string
	done    chan struct{}
	idleMax time.Duration
}

// NewServer creates a new API server around a session runner. idleMax
// bounds how long a session may sit unused before the janitor closes it;
// zero disables expiry.
func NewServer(listen string, runner *service.Runner, idleMax time.Duration) *Server {
	s := &Server{
		runner:  runner,
		mux:     http.NewServeMux(),
		listen:  listen,
		version: "dev",
		done:    make(chan struct{}),
		idleMax: idleMax,
	}

	s.registerRoutes()
	return s
}

// SetVersion sets the version string reported by the health endpoint.
func (s *Server) SetVersion(version string) {
	s.version = version
}

// Handler returns the HTTP handler with CORS middleware applied
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	// Session management; subtree paths are dispatched by hand
	s.mux.HandleFunc("/api/v1/session", s.handleSession)
	s.mux.HandleFunc("/api/v1/session/", s.handleSessionRoute)

	// WebSocket event stream
	s.mux.HandleFunc("/api/v1/ws/", s.handleWebSocket)
}

// Start starts the HTTP server and the idle-session janitor. It blocks
// until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.listen,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if s.idleMax > 0 {
		go s.janitor()
	}

	log.Printf("api: server starting on http://%s", s.listen)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes all sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	s.runner.Close()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// janitor periodically expires idle sessions
func (s *Server) janitor() {
	ticker := time.NewTicker(s.idleMax / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.runner.ExpireIdle(s.idleMax); n > 0 {
				log.Printf("api: expired %d idle session(s)", n)
			}
		case <-s.done:
			return
		}
	}
}

// corsMiddleware adds CORS headers restricted to localhost origins
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isAllowedOrigin permits local origins only
func isAllowedOrigin(origin string) bool {
	if origin == "" || origin == "file://" {
		return true
	}
	for _, prefix := range []string{
		"http://localhost:", "https://localhost:",
		"http://127.0.0.1:", "https://127.0.0.1:",
	} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return origin == "http://localhost" || origin == "http://127.0.0.1"
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// readJSON decodes a JSON request body
func readJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
