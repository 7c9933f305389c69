package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yuceldayan/ACADEM-X/internal/auth"
	"github.com/Yuceldayan/ACADEM-X/internal/files"
	"github.com/Yuceldayan/ACADEM-X/internal/store"
)

// Registry exposes the connection counters the health endpoint reports,
// without coupling the API to the chat implementation.
type Registry interface {
	Stats() map[string]int
}

// Server is the JSON surface of the platform. It holds no business
// logic; handlers validate input, call the store or file layer, and
// serialize results.
type Server struct {
	store    *store.Manager
	sessions *auth.SessionManager
	hasher   *auth.PasswordHasher
	files    *files.Storage
	registry Registry
	router   *http.ServeMux
	log      zerolog.Logger
}

// NewServer wires the HTTP layer over its collaborators and registers
// all routes.
func NewServer(st *store.Manager, sessions *auth.SessionManager, hasher *auth.PasswordHasher, fs *files.Storage, registry Registry, log zerolog.Logger) *Server {
	s := &Server{
		store:    st,
		sessions: sessions,
		hasher:   hasher,
		files:    fs,
		registry: registry,
		router:   http.NewServeMux(),
		log:      log.With().Str("component", "api").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Register and login are the only routes reachable without a
	// session; everything else sits behind the auth middleware.
	s.router.Handle("/api/register", s.public(http.HandlerFunc(s.handleRegister)))
	s.router.Handle("/api/login", s.public(http.HandlerFunc(s.handleLogin)))
	s.router.Handle("/health", s.public(http.HandlerFunc(s.handleHealth)))

	s.router.Handle("/api/logout", s.protected(s.handleLogout))
	s.router.Handle("/api/documents", s.protected(s.handleDocuments))
	s.router.Handle("/api/documents/", s.protected(s.handleDocumentByName))
	s.router.Handle("/api/listings", s.protected(s.handleListings))
	s.router.Handle("/api/listings/", s.protected(s.handleListingByID))
	s.router.Handle("/api/forum", s.protected(s.handleForum))
	s.router.Handle("/api/forum/", s.protected(s.handleForumByID))
	s.router.Handle("/api/profile", s.protected(s.handleProfile))
	s.router.Handle("/api/profile/", s.protected(s.handleProfileAction))
	s.router.Handle("/api/avatars/", s.protected(s.handleAvatarByName))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type contextKey string

const usernameKey contextKey = "username"

// usernameFrom returns the authenticated username attached by the
// session middleware.
func usernameFrom(r *http.Request) string {
	name, _ := r.Context().Value(usernameKey).(string)
	return name
}

func (s *Server) public(next http.Handler) http.Handler {
	return s.corsMiddleware(s.jsonMiddleware(next))
}

func (s *Server) protected(next func(http.ResponseWriter, *http.Request)) http.Handler {
	return s.corsMiddleware(s.jsonMiddleware(s.sessionMiddleware(http.HandlerFunc(next))))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			s.sendError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		username, ok := s.sessions.Lookup(cookie.Value)
		if !ok {
			s.sendError(w, "Session expired", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		s.log.Error().Err(err).Msg("failed to encode error response")
	}
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// client typos surface instead of silently dropping data.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Database    string         `json:"database"`
	Connections map[string]int `json:"connections"`
	Sessions    int            `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Database:    "ok",
		Connections: s.registry.Stats(),
		Sessions:    s.sessions.Count(),
	}
	status := http.StatusOK
	if err := s.store.HealthCheck(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}
	s.sendJSON(w, status, resp)
}
