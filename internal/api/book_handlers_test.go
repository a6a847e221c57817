package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookradio/bookradio-server/internal/domain"
	"github.com/bookradio/bookradio-server/internal/service"
)

func seedSmallCatalog(ts *testServer) (prideID string) {
	prideID = ts.seedBook(service.BookInput{
		ProjectID: "101",
		Title:     "Pride and Prejudice",
		Author:    "Jane Austen",
		Language:  "English",
		Genre:     "Romance",
		Duration:  720,
	})
	ts.seedBook(service.BookInput{
		ProjectID: "102",
		Title:     "The Mysterious Affair at Styles",
		Author:    "Agatha Christie",
		Language:  "English",
		Genre:     "Mystery",
		Duration:  380,
	})
	ts.seedBook(service.BookInput{
		ProjectID: "103",
		Title:     "Le Comte de Monte-Cristo",
		Author:    "Alexandre Dumas",
		Language:  "French",
		Genre:     "Adventure",
		Duration:  3100,
	})
	return prideID
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	seedSmallCatalog(ts)

	resp := ts.get("/api/v1/books?q=austen")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[service.SearchResult](t, resp)
	require.True(t, envelope.Success)
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, "Pride and Prejudice", envelope.Data.Books[0].Title)
	assert.Equal(t, 1, envelope.Data.TotalMatches)
	assert.Equal(t, "austen", envelope.Data.SearchQuery)
}

func TestSearchBooks_Filters(t *testing.T) {
	ts := setupTestServer(t)
	seedSmallCatalog(ts)

	resp := ts.get("/api/v1/books?language=french")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope[service.SearchResult](t, resp)
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, "Le Comte de Monte-Cristo", envelope.Data.Books[0].Title)

	resp = ts.get("/api/v1/books?duration=long")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[service.SearchResult](t, resp)
	require.Len(t, envelope.Data.Books, 2)

	// The author filter matches whole names only.
	resp = ts.get("/api/v1/books?author=jane+austen")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[service.SearchResult](t, resp)
	require.Len(t, envelope.Data.Books, 1)
	assert.Equal(t, "Pride and Prejudice", envelope.Data.Books[0].Title)

	resp = ts.get("/api/v1/books?author=austen")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[service.SearchResult](t, resp)
	assert.Empty(t, envelope.Data.Books)
}

func TestSearchBooks_InvalidDuration(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.get("/api/v1/books?duration=epic")

	require.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_FILTER", envelope.Error.Code)
}

func TestSearchBooks_Pagination(t *testing.T) {
	ts := setupTestServer(t)
	for i := range 25 {
		ts.seedBook(service.BookInput{
			ProjectID: fmt.Sprintf("%d", 200+i),
			Title:     fmt.Sprintf("Volume %d", i+1),
			Author:    "Various",
			Duration:  60,
		})
	}

	resp := ts.get("/api/v1/books?page=3&limit=10")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[service.SearchResult](t, resp)
	assert.Len(t, envelope.Data.Books, 5)
	assert.Equal(t, 25, envelope.Data.TotalMatches)
	assert.Equal(t, 3, envelope.Data.CurrentPage)
	assert.Equal(t, 3, envelope.Data.TotalPages)
	assert.False(t, envelope.Data.HasNextPage)
	assert.True(t, envelope.Data.HasPrevPage)

	// Garbage paging values fall back to defaults.
	resp = ts.get("/api/v1/books?page=banana&limit=banana")
	require.Equal(t, http.StatusOK, resp.Code)
	envelope = decodeEnvelope[service.SearchResult](t, resp)
	assert.Equal(t, 1, envelope.Data.CurrentPage)
	assert.Len(t, envelope.Data.Books, 20)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)
	prideID := seedSmallCatalog(ts)

	resp := ts.get("/api/v1/books/" + prideID)
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[domain.Book](t, resp)
	assert.Equal(t, prideID, envelope.Data.ID)
	assert.Equal(t, "Pride and Prejudice", envelope.Data.Title)
}

func TestGetBook_InvalidIdentifier(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.get("/api/v1/books/not-a-hex-id")

	require.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_IDENTIFIER", envelope.Error.Code)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.get("/api/v1/books/0123456789abcdef01234567")

	require.Equal(t, http.StatusNotFound, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestFilterOptions(t *testing.T) {
	ts := setupTestServer(t)
	seedSmallCatalog(ts)

	resp := ts.get("/api/v1/books/filters")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[service.FilterOptions](t, resp)
	assert.Equal(t, []string{"English", "French"}, envelope.Data.Languages)
	assert.Contains(t, envelope.Data.Genres, "Mystery")
	assert.Len(t, envelope.Data.DurationCategories, 3)
}

func TestCreateBook_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(http.MethodPost, "/api/v1/books", service.BookInput{
		ProjectID: "300",
		Title:     "Walden",
		Author:    "Henry David Thoreau",
	}, "")

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateBook(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("editor@example.com", "editing-pass-1")

	resp := ts.do(http.MethodPost, "/api/v1/books", service.BookInput{
		ProjectID: "300",
		Title:     "Walden",
		Author:    "Henry David Thoreau",
		Duration:  90,
	}, token)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	envelope := decodeEnvelope[domain.Book](t, resp)
	assert.Len(t, envelope.Data.ID, 24)
	assert.Equal(t, domain.DurationShort, envelope.Data.DurationCategory)

	// Same project again is rejected.
	resp = ts.do(http.MethodPost, "/api/v1/books", service.BookInput{
		ProjectID: "300",
		Title:     "Walden",
		Author:    "Henry David Thoreau",
	}, token)

	require.Equal(t, http.StatusConflict, resp.Code)
	conflict := decodeEnvelope[any](t, resp)
	require.NotNil(t, conflict.Error)
	assert.Equal(t, "DUPLICATE_SOURCE_ID", conflict.Error.Code)
}

func TestCreateBook_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser("editor@example.com", "editing-pass-1")

	resp := ts.do(http.MethodPost, "/api/v1/books", service.BookInput{
		ProjectID: "301",
	}, token)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	envelope := decodeEnvelope[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t)
	prideID := seedSmallCatalog(ts)
	token := ts.registerUser("editor@example.com", "editing-pass-1")

	resp := ts.do(http.MethodPut, "/api/v1/books/"+prideID, service.BookInput{
		ProjectID: "101",
		Title:     "Pride and Prejudice",
		Author:    "Jane Austen",
		Language:  "English",
		Genre:     "Romance",
		Tags:      []string{"Classic"},
		Duration:  80,
	}, token)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	envelope := decodeEnvelope[domain.Book](t, resp)
	assert.Equal(t, "Romance", envelope.Data.Genre)
	assert.Equal(t, []string{"Romance", "Classic"}, envelope.Data.Tags)
	assert.Equal(t, domain.DurationShort, envelope.Data.DurationCategory)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)
	prideID := seedSmallCatalog(ts)
	token := ts.registerUser("editor@example.com", "editing-pass-1")

	resp := ts.do(http.MethodDelete, "/api/v1/books/"+prideID, nil, token)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.get("/api/v1/books/" + prideID)
	require.Equal(t, http.StatusNotFound, resp.Code)
}
