package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookradio/bookradio-server/internal/domain"
	domainerrors "github.com/bookradio/bookradio-server/internal/errors"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testBook(id, projectID, title string) *domain.Book {
	now := time.Now()
	b := &domain.Book{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Author:      "Test Author",
		Language:    "English",
		Duration:    300,
		Genre:       "Fiction",
		Description: "A test audiobook",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Normalize()
	return b
}

func TestCreateAndGetBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("64f1a2b3c4d5e6f708192a3b", "lv-100", "Dracula")
	require.NoError(t, s.CreateBook(ctx, book))

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dracula", got.Title)
	assert.Equal(t, "lv-100", got.ProjectID)
	assert.Equal(t, domain.DurationMedium, got.DurationCategory)
}

func TestGetBook_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetBook(context.Background(), "64f1a2b3c4d5e6f708192a3b")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCreateBook_DuplicateProjectID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateBook(ctx, testBook("64f1a2b3c4d5e6f708192a3b", "lv-100", "Dracula")))

	err := s.CreateBook(ctx, testBook("74f1a2b3c4d5e6f708192a3c", "lv-100", "Dracula Again"))
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateSourceID)

	// The failed insert must not leave a record behind.
	_, err = s.GetBook(ctx, "74f1a2b3c4d5e6f708192a3c")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGetBookByProjectID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("64f1a2b3c4d5e6f708192a3b", "lv-200", "Emma")
	require.NoError(t, s.CreateBook(ctx, book))

	got, err := s.GetBookByProjectID(ctx, "lv-200")
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)

	_, err = s.GetBookByProjectID(ctx, "lv-999")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateBook(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("64f1a2b3c4d5e6f708192a3b", "lv-300", "Old Title")
	require.NoError(t, s.CreateBook(ctx, book))

	book.Title = "New Title"
	book.Normalize()
	require.NoError(t, s.UpdateBook(ctx, book))

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
}

func TestUpdateBook_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateBook(context.Background(), testBook("64f1a2b3c4d5e6f708192a3b", "lv-1", "Ghost"))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteBook_FreesProjectID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("64f1a2b3c4d5e6f708192a3b", "lv-400", "Persuasion")
	require.NoError(t, s.CreateBook(ctx, book))
	require.NoError(t, s.DeleteBook(ctx, book.ID))

	// Project ID is reusable after deletion.
	require.NoError(t, s.CreateBook(ctx, testBook("74f1a2b3c4d5e6f708192a3c", "lv-400", "Persuasion")))

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteBook(ctx, book.ID))
}

func seedCatalog(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	books := []*domain.Book{
		{ID: "000000000000000000000001", ProjectID: "lv-1", Title: "Pride and Prejudice", Author: "Jane Austen", Language: "English", Duration: 690, Genre: "Romance", CreatedAt: base.Add(1 * time.Hour)},
		{ID: "000000000000000000000002", ProjectID: "lv-2", Title: "The Mysterious Affair at Styles", Author: "Agatha Christie", Language: "English", Duration: 390, Genre: "Mystery", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "000000000000000000000003", ProjectID: "lv-3", Title: "Le Comte de Monte-Cristo", Author: "Alexandre Dumas", Language: "French", Duration: 3000, Genre: "Adventure", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "000000000000000000000004", ProjectID: "lv-4", Title: "The Tell-Tale Heart", Author: "Edgar Allan Poe", Language: "English", Duration: 20, Genre: "Mystery", Tags: []string{"Horror"}, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "000000000000000000000005", ProjectID: "lv-5", Title: "A Pride of Lions", Author: "Nobody Famous", Language: "English", Duration: 100, Genre: "Nature", Description: "Austen is mentioned only in the description", CreatedAt: base.Add(5 * time.Hour)},
	}
	for _, b := range books {
		b.UpdatedAt = b.CreatedAt
		b.Normalize()
		require.NoError(t, s.CreateBook(ctx, b))
	}
}

func TestSearchBooks_TextMatchesTitleAndAuthor(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	books, total, err := s.SearchBooks(ctx, BookQuery{Text: "pride"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, books, 2)
	// Newest first.
	assert.Equal(t, "A Pride of Lions", books[0].Title)
	assert.Equal(t, "Pride and Prejudice", books[1].Title)

	books, total, err = s.SearchBooks(ctx, BookQuery{Text: "christie"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "The Mysterious Affair at Styles", books[0].Title)
}

func TestSearchBooks_TextIgnoresDescription(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	// "austen" appears in one author field and one description; only
	// the author match counts.
	books, total, err := s.SearchBooks(context.Background(), BookQuery{Text: "austen"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Pride and Prejudice", books[0].Title)
}

func TestSearchBooks_Filters(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	_, total, err := s.SearchBooks(ctx, BookQuery{Language: "french"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.SearchBooks(ctx, BookQuery{Genre: "mystery"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = s.SearchBooks(ctx, BookQuery{DurationCategory: "short"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	books, total, err := s.SearchBooks(ctx, BookQuery{Genre: "mystery", DurationCategory: "short"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "The Tell-Tale Heart", books[0].Title)
}

func TestSearchBooks_AuthorFilterIsExact(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	books, total, err := s.SearchBooks(ctx, BookQuery{Author: "jane austen"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Pride and Prejudice", books[0].Title)

	// A partial author name is not a match.
	_, total, err = s.SearchBooks(ctx, BookQuery{Author: "Jane"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchBooks_GenreFilterMatchesPrimaryOnly(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	// "Horror" is only a tag on The Tell-Tale Heart, not its genre.
	_, total, err := s.SearchBooks(context.Background(), BookQuery{Genre: "horror"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchBooks_Pagination(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	page1, total, err := s.SearchBooks(ctx, BookQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)

	page2, _, err := s.SearchBooks(ctx, BookQuery{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)

	page3, _, err := s.SearchBooks(ctx, BookQuery{Offset: 4, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	// Offset past the end yields an empty page, not an error.
	empty, total, err := s.SearchBooks(ctx, BookQuery{Offset: 100, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestSearchBooks_EmptyCatalog(t *testing.T) {
	s := setupTestStore(t)

	books, total, err := s.SearchBooks(context.Background(), BookQuery{Text: "anything"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, books)
}

func TestDistinctBookValues(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	values, err := s.DistinctBookValues(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"English", "French"}, values.Languages)
	assert.Equal(t, []string{"Adventure", "Mystery", "Nature", "Romance"}, values.Genres)
	assert.Len(t, values.Authors, 5)
	assert.Contains(t, values.Authors, "Jane Austen")
}

func TestDistinctBookValues_CaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i, lang := range []string{"English", "english", "ENGLISH"} {
		b := testBook(fmt.Sprintf("00000000000000000000000%d", i+1), fmt.Sprintf("lv-%d", i+1), fmt.Sprintf("Book %d", i+1))
		b.Language = lang
		require.NoError(t, s.CreateBook(ctx, b))
	}

	values, err := s.DistinctBookValues(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"English"}, values.Languages)
}
