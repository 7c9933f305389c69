package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Yuceldayan/ACADEM-X/internal/files"
	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

type DocumentListResponse struct {
	Documents []*types.Document `json:"documents"`
}

type LikeResponse struct {
	Likes int `json:"likes"`
}

type FavoriteResponse struct {
	Favorite bool `json:"favorite"`
}

type CommentRequest struct {
	Body string `json:"body"`
}

type CommentListResponse struct {
	Comments []*types.Comment `json:"comments"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDocuments(w, r)
	case http.MethodPost:
		s.uploadDocument(w, r)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("document listing failed")
		s.sendError(w, "Failed to list documents", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, DocumentListResponse{Documents: docs})
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.sendError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		s.sendError(w, "Title is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.sendError(w, "PDF file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := s.files.SaveDocument(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrNotPDF):
			s.sendError(w, "Only PDF files are accepted", http.StatusBadRequest)
		case errors.Is(err, files.ErrTooLarge):
			s.sendError(w, "File exceeds the upload size limit", http.StatusRequestEntityTooLarge)
		case errors.Is(err, files.ErrEmptyFile), errors.Is(err, files.ErrUnsafeName):
			s.sendError(w, "Invalid file", http.StatusBadRequest)
		default:
			s.log.Error().Err(err).Msg("document save failed")
			s.sendError(w, "Upload failed", http.StatusInternalServerError)
		}
		return
	}

	doc := &types.Document{
		Filename:    stored,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		Author:      usernameFrom(r),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		// Keep disk and database consistent if the metadata insert fails.
		if rmErr := s.files.DeleteDocument(stored); rmErr != nil {
			s.log.Error().Err(rmErr).Str("filename", stored).Msg("orphaned upload cleanup failed")
		}
		s.log.Error().Err(err).Msg("document metadata insert failed")
		s.sendError(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	s.awardUploadBadges(r, doc.Author)
	s.log.Info().Str("filename", stored).Str("author", doc.Author).Msg("document uploaded")
	s.sendJSON(w, http.StatusCreated, doc)
}

// awardUploadBadges grants milestone badges after a successful upload.
// Badge failures are logged and swallowed; the upload already succeeded.
func (s *Server) awardUploadBadges(r *http.Request, author string) {
	docs, err := s.store.ListDocumentsByAuthor(r.Context(), author)
	if err != nil {
		s.log.Error().Err(err).Msg("badge check failed")
		return
	}
	var badge string
	switch len(docs) {
	case 1:
		badge = "First Upload"
	case 10:
		badge = "Prolific Contributor"
	default:
		return
	}
	if err := s.store.AddBadge(r.Context(), author, badge); err != nil {
		s.log.Error().Err(err).Str("badge", badge).Msg("badge award failed")
	}
}

// handleDocumentByName dispatches /api/documents/{filename}[/action].
func (s *Server) handleDocumentByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.SplitN(path, "/", 2)
	filename := parts[0]
	if filename == "" {
		s.sendError(w, "Document filename required", http.StatusBadRequest)
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			s.getDocument(w, r, filename)
		case http.MethodDelete:
			s.deleteDocument(w, r, filename)
		default:
			s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "file":
		s.serveDocument(w, r, filename, false)
	case "download":
		s.serveDocument(w, r, filename, true)
	case "like":
		s.likeDocument(w, r, filename)
	case "comments":
		s.handleComments(w, r, filename)
	case "favorite":
		s.favoriteDocument(w, r, filename)
	default:
		s.sendError(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request, filename string) {
	doc, err := s.store.GetDocument(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			s.sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("document lookup failed")
		s.sendError(w, "Failed to load document", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, doc)
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, filename string, download bool) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := s.files.OpenDocument(filename)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			s.sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("document open failed")
		s.sendError(w, "Failed to open document", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))

	info, err := f.Stat()
	if err != nil {
		s.sendError(w, "Failed to open document", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request, filename string) {
	doc, err := s.store.GetDocument(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			s.sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("document lookup failed")
		s.sendError(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if doc.Author != usernameFrom(r) {
		s.sendError(w, "Only the uploader can delete a document", http.StatusForbidden)
		return
	}

	if err := s.store.DeleteDocument(r.Context(), filename); err != nil {
		s.log.Error().Err(err).Msg("document delete failed")
		s.sendError(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	if err := s.files.DeleteDocument(filename); err != nil {
		s.log.Error().Err(err).Str("filename", filename).Msg("file removal failed")
	}

	s.log.Info().Str("filename", filename).Msg("document deleted")
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) likeDocument(w http.ResponseWriter, r *http.Request, filename string) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	likes, err := s.store.IncrementLikes(r.Context(), filename)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			s.sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("like failed")
		s.sendError(w, "Failed to like document", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, LikeResponse{Likes: likes})
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request, filename string) {
	switch r.Method {
	case http.MethodGet:
		comments, err := s.store.ListComments(r.Context(), filename)
		if err != nil {
			s.log.Error().Err(err).Msg("comment listing failed")
			s.sendError(w, "Failed to list comments", http.StatusInternalServerError)
			return
		}
		s.sendJSON(w, http.StatusOK, CommentListResponse{Comments: comments})

	case http.MethodPost:
		var req CommentRequest
		if err := s.decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Body) == "" {
			s.sendError(w, "Comment body is required", http.StatusBadRequest)
			return
		}
		comment := &types.Comment{
			Filename:  filename,
			Username:  usernameFrom(r),
			Body:      strings.TrimSpace(req.Body),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.AddComment(r.Context(), comment); err != nil {
			if errors.Is(err, store.ErrDocumentNotFound) {
				s.sendError(w, "Document not found", http.StatusNotFound)
				return
			}
			s.log.Error().Err(err).Msg("comment insert failed")
			s.sendError(w, "Failed to add comment", http.StatusInternalServerError)
			return
		}
		s.sendJSON(w, http.StatusCreated, comment)

	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) favoriteDocument(w http.ResponseWriter, r *http.Request, filename string) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := s.store.GetDocument(r.Context(), filename); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			s.sendError(w, "Document not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("document lookup failed")
		s.sendError(w, "Failed to update favorites", http.StatusInternalServerError)
		return
	}

	nowFavorite, err := s.store.ToggleFavorite(r.Context(), usernameFrom(r), filename)
	if err != nil {
		s.log.Error().Err(err).Msg("favorite toggle failed")
		s.sendError(w, "Failed to update favorites", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, FavoriteResponse{Favorite: nowFavorite})
}
