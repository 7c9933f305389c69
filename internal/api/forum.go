package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

type CreateQuestionRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

type AnswerRequest struct {
	Body string `json:"body"`
}

type QuestionListResponse struct {
	Questions []*types.Question `json:"questions"`
}

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}

func (s *Server) handleForum(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listQuestions(w, r)
	case http.MethodPost:
		s.createQuestion(w, r)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleForumByID dispatches /api/forum/categories, /api/forum/{id} and
// /api/forum/{id}/answers.
func (s *Server) handleForumByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/forum/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		s.sendError(w, "Question ID required", http.StatusBadRequest)
		return
	}

	if id == "categories" {
		if r.Method != http.MethodGet {
			s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.sendJSON(w, http.StatusOK, CategoryListResponse{Categories: store.ForumCategories})
		return
	}

	if len(parts) == 2 {
		if parts[1] != "answers" {
			s.sendError(w, "Not found", http.StatusNotFound)
			return
		}
		s.addAnswer(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.getQuestion(w, r, id)
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	questions, err := s.store.ListQuestions(r.Context(), category)
	if err != nil {
		s.log.Error().Err(err).Msg("question listing failed")
		s.sendError(w, "Failed to list questions", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, QuestionListResponse{Questions: questions})
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		s.sendError(w, "Title and body are required", http.StatusBadRequest)
		return
	}
	if !validCategory(req.Category) {
		s.sendError(w, "Unknown category", http.StatusBadRequest)
		return
	}

	question := &types.Question{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		Category:  req.Category,
		Author:    usernameFrom(r),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateQuestion(r.Context(), question); err != nil {
		s.log.Error().Err(err).Msg("question insert failed")
		s.sendError(w, "Failed to create question", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusCreated, question)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request, id string) {
	question, err := s.store.GetQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			s.sendError(w, "Question not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("question lookup failed")
		s.sendError(w, "Failed to load question", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, question)
}

func (s *Server) addAnswer(w http.ResponseWriter, r *http.Request, questionID string) {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnswerRequest
	if err := s.decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Body) == "" {
		s.sendError(w, "Answer body is required", http.StatusBadRequest)
		return
	}

	answer := &types.Answer{
		QuestionID: questionID,
		Body:       strings.TrimSpace(req.Body),
		Author:     usernameFrom(r),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.AddAnswer(r.Context(), answer); err != nil {
		if errors.Is(err, store.ErrQuestionNotFound) {
			s.sendError(w, "Question not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("answer insert failed")
		s.sendError(w, "Failed to add answer", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusCreated, answer)
}

func validCategory(category string) bool {
	for _, c := range store.ForumCategories {
		if c == category {
			return true
		}
	}
	return false
}
