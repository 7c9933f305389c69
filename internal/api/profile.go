package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Yuceldayan/ACADEM-X/internal/files"
	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

type ProfileStats struct {
	Uploads  int `json:"uploads"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

type ProfileResponse struct {
	Username  string            `json:"username"`
	Stats     ProfileStats      `json:"stats"`
	Uploads   []*types.Document `json:"uploads"`
	Favorites []*types.Document `json:"favorites"`
	Badges    []string          `json:"badges"`
	HasAvatar bool              `json:"has_avatar"`
}

type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := usernameFrom(r)
	user, err := s.store.GetUser(r.Context(), username)
	if err != nil {
		s.log.Error().Err(err).Msg("profile lookup failed")
		s.sendError(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	uploads, err := s.store.ListDocumentsByAuthor(r.Context(), username)
	if err != nil {
		s.log.Error().Err(err).Msg("upload listing failed")
		s.sendError(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	stats := ProfileStats{Uploads: len(uploads)}
	for _, doc := range uploads {
		stats.Likes += doc.Likes
		stats.Comments += doc.Comments
	}

	// Favorites referencing since-deleted documents are skipped.
	favorites := make([]*types.Document, 0, len(user.Favorites))
	for _, filename := range user.Favorites {
		doc, err := s.store.GetDocument(r.Context(), filename)
		if err != nil {
			continue
		}
		favorites = append(favorites, doc)
	}

	s.sendJSON(w, http.StatusOK, ProfileResponse{
		Username:  username,
		Stats:     stats,
		Uploads:   uploads,
		Favorites: favorites,
		Badges:    user.Badges,
		HasAvatar: s.files.HasAvatar(username),
	})
}

// handleProfileAction dispatches /api/profile/{avatar,username,password}.
func (s *Server) handleProfileAction(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/profile/")
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "avatar":
		s.uploadAvatar(w, r)
	case "username":
		s.changeUsername(w, r)
	case "password":
		s.changePassword(w, r)
	default:
		s.sendError(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.sendError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		s.sendError(w, "Avatar image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	username := usernameFrom(r)
	if err := s.files.SaveAvatar(username, file); err != nil {
		switch {
		case errors.Is(err, files.ErrInvalidImage):
			s.sendError(w, "Avatar must be a JPEG or PNG image", http.StatusBadRequest)
		case errors.Is(err, files.ErrTooLarge):
			s.sendError(w, "Avatar exceeds the upload size limit", http.StatusRequestEntityTooLarge)
		default:
			s.log.Error().Err(err).Msg("avatar save failed")
			s.sendError(w, "Failed to save avatar", http.StatusInternalServerError)
		}
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "avatar updated"})
}

// handleAvatarByName serves /api/avatars/{username}.
func (s *Server) handleAvatarByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := strings.TrimPrefix(r.URL.Path, "/api/avatars/")
	if !types.IsValidUsername(username) {
		s.sendError(w, "Invalid username", http.StatusBadRequest)
		return
	}

	f, err := s.files.OpenAvatar(username)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			s.sendError(w, "Avatar not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("avatar open failed")
		s.sendError(w, "Failed to open avatar", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.sendError(w, "Failed to open avatar", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeContent(w, r, username+".jpg", info.ModTime(), f)
}

func (s *Server) changeUsername(w http.ResponseWriter, r *http.Request) {
	var req ChangeUsernameRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !types.IsValidUsername(req.NewUsername) {
		s.sendError(w, "Invalid username", http.StatusBadRequest)
		return
	}

	oldName := usernameFrom(r)
	if req.NewUsername == oldName {
		s.sendJSON(w, http.StatusOK, SessionResponse{Username: oldName})
		return
	}

	if err := s.store.RenameUser(r.Context(), oldName, req.NewUsername); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.sendError(w, "Username already taken", http.StatusConflict)
			return
		}
		s.log.Error().Err(err).Msg("username change failed")
		s.sendError(w, "Failed to change username", http.StatusInternalServerError)
		return
	}

	// Live sessions and the avatar file follow the rename so the user
	// stays logged in and keeps their picture.
	s.sessions.Rename(oldName, req.NewUsername)
	if err := s.files.RenameAvatar(oldName, req.NewUsername); err != nil {
		s.log.Error().Err(err).Msg("avatar rename failed")
	}
	s.log.Info().Str("old", oldName).Str("new", req.NewUsername).Msg("username changed")
	s.sendJSON(w, http.StatusOK, SessionResponse{Username: req.NewUsername})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 6 {
		s.sendError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	username := usernameFrom(r)
	user, err := s.store.GetUser(r.Context(), username)
	if err != nil {
		s.log.Error().Err(err).Msg("user lookup failed")
		s.sendError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		s.sendError(w, "Current password is incorrect", http.StatusUnauthorized)
		return
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		s.log.Error().Err(err).Msg("password hashing failed")
		s.sendError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	if err := s.store.UpdatePassword(r.Context(), username, hash); err != nil {
		s.log.Error().Err(err).Msg("password update failed")
		s.sendError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
