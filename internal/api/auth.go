package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Yuceldayan/ACADEM-X/internal/auth"
	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !types.IsValidUsername(req.Username) {
		s.sendError(w, "Invalid username", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		s.sendError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed")
		s.sendError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	user := &types.User{
		Username:     req.Username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.sendError(w, "Username already taken", http.StatusConflict)
			return
		}
		s.log.Error().Err(err).Msg("user creation failed")
		s.sendError(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	s.beginSession(w, req.Username)
	s.log.Info().Str("username", req.Username).Msg("user registered")
	s.sendJSON(w, http.StatusCreated, SessionResponse{Username: req.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.store.GetUser(r.Context(), req.Username)
	if err != nil || !s.hasher.Verify(req.Password, user.PasswordHash) {
		// Same response for unknown user and wrong password.
		s.sendError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	s.beginSession(w, user.Username)
	s.log.Info().Str("username", user.Username).Msg("user logged in")
	s.sendJSON(w, http.StatusOK, SessionResponse{Username: user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) beginSession(w http.ResponseWriter, username string) {
	token := s.sessions.Create(username)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
