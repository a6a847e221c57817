package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookradio/bookradio-server/internal/domain"
	domainerrors "github.com/bookradio/bookradio-server/internal/errors"
	"github.com/bookradio/bookradio-server/internal/normalize"
)

const (
	bookPrefix          = "book:"
	bookByProjectPrefix = "idx:books:project:"
)

// BookQuery describes a catalog search. Zero-valued fields are ignored.
type BookQuery struct {
	// Text matches as a case- and diacritic-insensitive substring of
	// title or author.
	Text string

	// Exact-match filters (case-insensitive).
	Language         string
	Genre            string
	Author           string
	DurationCategory string

	// Paging window over the sorted result set.
	Offset int
	Limit  int
}

// CreateBook stores a new book. The upstream project ID is unique;
// inserting a book whose project ID is already present returns a
// duplicate source identifier error.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return domainerrors.AlreadyExists(fmt.Sprintf("book %s already exists", book.ID))
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check book exists: %w", err)
		}

		if book.ProjectID != "" {
			projectKey := []byte(bookByProjectPrefix + book.ProjectID)
			_, err := txn.Get(projectKey)
			if err == nil {
				return domainerrors.DuplicateSourceID(fmt.Sprintf("project %s is already in the catalog", book.ProjectID))
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check project index: %w", err)
			}

			if err := txn.Set(projectKey, []byte(book.ID)); err != nil {
				return fmt.Errorf("set project index: %w", err)
			}
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}

		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("project_id", book.ProjectID),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(bookPrefix + id)

	var book domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// GetBookByProjectID retrieves a book by its upstream project identifier.
func (s *Store) GetBookByProjectID(ctx context.Context, projectID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bookID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(bookByProjectPrefix + projectID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			bookID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domainerrors.NotFoundf("no book for project %s", projectID)
		}
		return nil, fmt.Errorf("get project index: %w", err)
	}

	return s.GetBook(ctx, bookID)
}

// UpdateBook replaces an existing book, maintaining the project index.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)

	err := s.db.Update(func(txn *badger.Txn) error {
		var oldBook domain.Book
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.NotFoundf("book %s not found", book.ID)
		}
		if err != nil {
			return fmt.Errorf("get existing book: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &oldBook)
		}); err != nil {
			return err
		}

		if oldBook.ProjectID != book.ProjectID {
			if oldBook.ProjectID != "" {
				if err := txn.Delete([]byte(bookByProjectPrefix + oldBook.ProjectID)); err != nil {
					return fmt.Errorf("delete old project index: %w", err)
				}
			}
			if book.ProjectID != "" {
				projectKey := []byte(bookByProjectPrefix + book.ProjectID)
				_, err := txn.Get(projectKey)
				if err == nil {
					return domainerrors.DuplicateSourceID(fmt.Sprintf("project %s is already in the catalog", book.ProjectID))
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("check project index: %w", err)
				}
				if err := txn.Set(projectKey, []byte(book.ID)); err != nil {
					return fmt.Errorf("set project index: %w", err)
				}
			}
		}

		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("marshal book: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book updated",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
		)
	}
	return nil
}

// DeleteBook removes a book and its project index. Deleting a missing
// book is not an error.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + id)

	return s.db.Update(func(txn *badger.Txn) error {
		var book domain.Book
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get book: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &book)
		}); err != nil {
			return err
		}

		if book.ProjectID != "" {
			if err := txn.Delete([]byte(bookByProjectPrefix + book.ProjectID)); err != nil {
				return fmt.Errorf("delete project index: %w", err)
			}
		}
		return txn.Delete(key)
	})
}

// SearchBooks scans the catalog for books matching the query and
// returns one page of results plus the total match count. Results are
// ordered newest first, with ID as a tiebreaker for a stable order.
func (s *Store) SearchBooks(ctx context.Context, q BookQuery) ([]domain.Book, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	text := normalize.Fold(q.Text)
	language := normalize.Fold(q.Language)
	genre := normalize.Fold(q.Genre)
	author := normalize.Fold(q.Author)

	var matches []domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var book domain.Book
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return fmt.Errorf("unmarshal book: %w", err)
			}

			if matchesQuery(&book, text, language, genre, author, q.DurationCategory) {
				matches = append(matches, book)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)

	if q.Offset >= total {
		return []domain.Book{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matches[q.Offset:end], total, nil
}

// matchesQuery applies the pre-folded filter values to a book.
func matchesQuery(book *domain.Book, text, language, genre, author, durationCategory string) bool {
	if text != "" {
		if !strings.Contains(normalize.Fold(book.Title), text) &&
			!strings.Contains(normalize.Fold(book.Author), text) {
			return false
		}
	}
	if language != "" && normalize.Fold(book.Language) != language {
		return false
	}
	if author != "" && normalize.Fold(book.Author) != author {
		return false
	}
	if genre != "" && normalize.Fold(book.Genre) != genre {
		return false
	}
	if durationCategory != "" && string(book.DurationCategory) != durationCategory {
		return false
	}
	return true
}

// FilterValues holds the distinct filterable values present in the catalog.
type FilterValues struct {
	Languages []string
	Genres    []string
	Authors   []string
}

// DistinctBookValues scans the catalog and collects the distinct
// languages, genres, and authors, each sorted alphabetically.
// Comparison is case-insensitive; the first spelling encountered wins.
func (s *Store) DistinctBookValues(ctx context.Context) (*FilterValues, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	languages := map[string]string{}
	genres := map[string]string{}
	authors := map[string]string{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var book domain.Book
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			}); err != nil {
				return fmt.Errorf("unmarshal book: %w", err)
			}

			collectDistinct(languages, book.Language)
			collectDistinct(authors, book.Author)
			collectDistinct(genres, book.Genre)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FilterValues{
		Languages: sortedValues(languages),
		Genres:    sortedValues(genres),
		Authors:   sortedValues(authors),
	}, nil
}

func collectDistinct(seen map[string]string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	key := normalize.Fold(value)
	if _, ok := seen[key]; !ok {
		seen[key] = value
	}
}

func sortedValues(seen map[string]string) []string {
	out := make([]string, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return normalize.Fold(out[i]) < normalize.Fold(out[j])
	})
	return out
}
