// Package service contains the application services sitting between the
// HTTP layer and the store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bookradio/bookradio-server/internal/config"
	"github.com/bookradio/bookradio-server/internal/domain"
	domainerrors "github.com/bookradio/bookradio-server/internal/errors"
	"github.com/bookradio/bookradio-server/internal/id"
	"github.com/bookradio/bookradio-server/internal/store"
	"github.com/bookradio/bookradio-server/internal/validation"
)

// CatalogService answers catalog queries and manages book records.
type CatalogService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger

	defaultPageSize int
	maxPageSize     int

	// Filter options are recomputed at most once per TTL and
	// invalidated on every catalog write.
	filterTTL     time.Duration
	filterMu      sync.Mutex
	cachedFilters *FilterOptions
	cachedAt      time.Time
}

// NewCatalogService creates a catalog service.
func NewCatalogService(s *store.Store, v *validation.Validator, cfg config.CatalogConfig, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:           s,
		validator:       v,
		logger:          logger,
		defaultPageSize: cfg.PageSize,
		maxPageSize:     cfg.MaxPageSize,
		filterTTL:       cfg.FilterCacheTTL,
	}
}

// SearchParams are the catalog search inputs as given by the client.
type SearchParams struct {
	Query            string
	Genre            string
	Author           string
	Language         string
	DurationCategory string
	Page             int
	Limit            int
}

// SearchResult is one page of catalog matches with paging metadata.
type SearchResult struct {
	Books          []domain.Book     `json:"books"`
	TotalMatches   int               `json:"totalMatches"`
	CurrentPage    int               `json:"currentPage"`
	TotalPages     int               `json:"totalPages"`
	HasNextPage    bool              `json:"hasNextPage"`
	HasPrevPage    bool              `json:"hasPrevPage"`
	SearchQuery    string            `json:"searchQuery,omitempty"`
	AppliedFilters map[string]string `json:"appliedFilters,omitempty"`
}

// Search runs a catalog query. Out-of-range page and limit values fall
// back to defaults; an unknown duration category is rejected.
func (s *CatalogService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.DurationCategory != "" && !domain.ValidDurationCategory(params.DurationCategory) {
		return nil, domainerrors.InvalidFilterf("unknown duration category %q (expected short, medium, or long)", params.DurationCategory)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	query := store.BookQuery{
		Text:             strings.TrimSpace(params.Query),
		Language:         strings.TrimSpace(params.Language),
		Genre:            strings.TrimSpace(params.Genre),
		Author:           strings.TrimSpace(params.Author),
		DurationCategory: params.DurationCategory,
		Offset:           (page - 1) * limit,
		Limit:            limit,
	}

	books, total, err := s.store.SearchBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	totalPages := (total + limit - 1) / limit

	applied := map[string]string{}
	for key, value := range map[string]string{
		"genre":            query.Genre,
		"author":           query.Author,
		"language":         query.Language,
		"durationCategory": query.DurationCategory,
	} {
		if value != "" {
			applied[key] = value
		}
	}
	if len(applied) == 0 {
		applied = nil
	}

	return &SearchResult{
		Books:          books,
		TotalMatches:   total,
		CurrentPage:    page,
		TotalPages:     totalPages,
		HasNextPage:    page < totalPages,
		HasPrevPage:    page > 1,
		SearchQuery:    query.Text,
		AppliedFilters: applied,
	}, nil
}

// GetBook returns a single book. A malformed ID is rejected before the
// store is consulted.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	if !id.Valid(bookID) {
		return nil, domainerrors.InvalidIdentifier(fmt.Sprintf("%q is not a valid book ID", bookID))
	}
	return s.store.GetBook(ctx, bookID)
}

// FilterOptions lists the values the catalog can currently be
// filtered by.
type FilterOptions struct {
	Genres             []string                `json:"genres"`
	Authors            []string                `json:"authors"`
	Languages          []string                `json:"languages"`
	DurationCategories []domain.DurationBucket `json:"durationCategories"`
}

// FilterOptions returns the distinct filter values, cached for the
// configured TTL.
func (s *CatalogService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	s.filterMu.Lock()
	defer s.filterMu.Unlock()

	if s.cachedFilters != nil && time.Since(s.cachedAt) < s.filterTTL {
		return s.cachedFilters, nil
	}

	values, err := s.store.DistinctBookValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect filter values: %w", err)
	}

	s.cachedFilters = &FilterOptions{
		Genres:             values.Genres,
		Authors:            values.Authors,
		Languages:          values.Languages,
		DurationCategories: domain.DurationBuckets(),
	}
	s.cachedAt = time.Now()
	return s.cachedFilters, nil
}

func (s *CatalogService) invalidateFilterCache() {
	s.filterMu.Lock()
	s.cachedFilters = nil
	s.filterMu.Unlock()
}

// BookInput carries the writable fields of a book record.
type BookInput struct {
	ProjectID     string           `json:"project_id" validate:"required"`
	Title         string           `json:"title" validate:"required"`
	Author        string           `json:"author" validate:"required"`
	Description   string           `json:"description"`
	Language      string           `json:"language"`
	Year          int              `json:"year"`
	Duration      int              `json:"duration" validate:"gte=0"`
	Genre         string           `json:"genre"`
	Tags          []string         `json:"tags"`
	Image         string           `json:"image" validate:"omitempty,url"`
	LibriVoxURL   string           `json:"librivoxUrl" validate:"omitempty,url"`
	RSSURL        string           `json:"rssUrl" validate:"omitempty,url"`
	TotalSections int              `json:"totalSections" validate:"gte=0"`
	Episodes      []domain.Episode `json:"episodes"`
}

func (s *CatalogService) validateInput(input BookInput) error {
	if err := s.validator.Validate(input); err != nil {
		return err
	}
	if input.Year != 0 && (input.Year < 1000 || input.Year > time.Now().Year()) {
		return domainerrors.Validationf("year %d is outside the plausible range", input.Year)
	}
	return nil
}

// CreateBook adds a new normalized book record to the catalog.
func (s *CatalogService) CreateBook(ctx context.Context, input BookInput) (*domain.Book, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	bookID, err := id.New()
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		ID:            bookID,
		ProjectID:     input.ProjectID,
		Title:         input.Title,
		Author:        input.Author,
		Description:   input.Description,
		Language:      input.Language,
		Year:          input.Year,
		Duration:      input.Duration,
		Genre:         input.Genre,
		Tags:          input.Tags,
		Image:         input.Image,
		LibriVoxURL:   input.LibriVoxURL,
		RSSURL:        input.RSSURL,
		TotalSections: input.TotalSections,
		Episodes:      input.Episodes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	book.Normalize()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.invalidateFilterCache()
	return book, nil
}

// UpdateBook replaces the writable fields of an existing book and
// re-normalizes the record.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, input BookInput) (*domain.Book, error) {
	if !id.Valid(bookID) {
		return nil, domainerrors.InvalidIdentifier(fmt.Sprintf("%q is not a valid book ID", bookID))
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book.ProjectID = input.ProjectID
	book.Title = input.Title
	book.Author = input.Author
	book.Description = input.Description
	book.Language = input.Language
	book.Year = input.Year
	book.Duration = input.Duration
	book.Genre = input.Genre
	book.Tags = input.Tags
	book.Image = input.Image
	book.LibriVoxURL = input.LibriVoxURL
	book.RSSURL = input.RSSURL
	book.TotalSections = input.TotalSections
	book.Episodes = input.Episodes
	book.UpdatedAt = time.Now()
	book.Normalize()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}

	s.invalidateFilterCache()
	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if !id.Valid(bookID) {
		return domainerrors.InvalidIdentifier(fmt.Sprintf("%q is not a valid book ID", bookID))
	}
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	s.invalidateFilterCache()
	return nil
}
