package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookradio/bookradio-server/internal/http/response"
	"github.com/bookradio/bookradio-server/internal/service"
)

// handleSearchBooks returns a paginated page of catalog matches.
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	params := parseSearchParams(r)

	result, err := s.catalogService.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetBook returns a single book by ID.
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	book, err := s.catalogService.GetBook(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleFilterOptions returns the distinct filter values of the catalog.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := s.catalogService.FilterOptions(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, options, s.logger)
}

// handleCreateBook adds a book to the catalog.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var input service.BookInput
	if err := json.UnmarshalRead(r.Body, &input); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.catalogService.CreateBook(r.Context(), input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("Book created via API", "book_id", book.ID, "user_id", getUserID(r.Context()))
	response.Created(w, book, s.logger)
}

// handleUpdateBook replaces the mutable fields of a book.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input service.BookInput
	if err := json.UnmarshalRead(r.Body, &input); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.catalogService.UpdateBook(r.Context(), id, input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book from the catalog.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.catalogService.DeleteBook(r.Context(), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// parseSearchParams reads catalog query parameters from the query string.
// Malformed numbers fall back to service defaults.
func parseSearchParams(r *http.Request) service.SearchParams {
	q := r.URL.Query()

	params := service.SearchParams{
		Query:            q.Get("q"),
		Genre:            q.Get("genre"),
		Author:           q.Get("author"),
		Language:         q.Get("language"),
		DurationCategory: q.Get("duration"),
	}

	if pageStr := q.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			params.Page = page
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}

	return params
}
