package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Yuceldayan/ACADEM-X/internal/store"
	"github.com/Yuceldayan/ACADEM-X/pkg/types"
)

// listingsPerPage matches the page size the listing pages render.
const listingsPerPage = 6

type CreateListingRequest struct {
	LessonTitle string  `json:"lesson_title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Contact     string  `json:"contact"`
}

type ListingPageResponse struct {
	Listings   []*types.Listing `json:"listings"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.searchListings(w, r)
	case http.MethodPost:
		s.createListing(w, r)
	default:
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListingByID serves /api/listings/{id}.
func (s *Server) handleListingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/listings/")
	if id == "" {
		s.sendError(w, "Listing ID required", http.StatusBadRequest)
		return
	}

	listing, err := s.store.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrListingNotFound) {
			s.sendError(w, "Listing not found", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("listing lookup failed")
		s.sendError(w, "Failed to load listing", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, listing)
}

func (s *Server) searchListings(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}

	listings, total, err := s.store.SearchListings(r.Context(), search, page, listingsPerPage)
	if err != nil {
		s.log.Error().Err(err).Msg("listing search failed")
		s.sendError(w, "Failed to search listings", http.StatusInternalServerError)
		return
	}

	totalPages := (total + listingsPerPage - 1) / listingsPerPage
	s.sendJSON(w, http.StatusOK, ListingPageResponse{
		Listings:   listings,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}

func (s *Server) createListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.LessonTitle) == "" {
		s.sendError(w, "Lesson title is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Contact) == "" {
		s.sendError(w, "Contact information is required", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		s.sendError(w, "Price cannot be negative", http.StatusBadRequest)
		return
	}

	listing := &types.Listing{
		ID:          uuid.New().String(),
		LessonTitle: strings.TrimSpace(req.LessonTitle),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Contact:     strings.TrimSpace(req.Contact),
		Author:      usernameFrom(r),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateListing(r.Context(), listing); err != nil {
		s.log.Error().Err(err).Msg("listing insert failed")
		s.sendError(w, "Failed to create listing", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusCreated, listing)
}
