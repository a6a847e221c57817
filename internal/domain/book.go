// Package domain contains the core business entities and domain logic for
// the BookRadio audiobook catalog.
package domain

import (
	"strings"
	"time"

	"github.com/bookradio/bookradio-server/internal/normalize"
)

// DurationCategory buckets a book's total runtime for filtering.
type DurationCategory string

const (
	// DurationShort is at most 2 hours of audio.
	DurationShort DurationCategory = "short"
	// DurationMedium is over 2 hours, up to 8 hours.
	DurationMedium DurationCategory = "medium"
	// DurationLong is over 8 hours.
	DurationLong DurationCategory = "long"
	// DurationUnknown is used when the source reported no runtime.
	DurationUnknown DurationCategory = ""
)

const (
	shortMaxMinutes  = 120
	mediumMaxMinutes = 480
)

// Fallbacks applied by Normalize when the source supplies no value.
const (
	DefaultLanguage = "English"
	DefaultGenre    = "Unknown"
)

// BucketDuration maps a runtime in minutes to its duration category.
// Non-positive durations are treated as unknown.
func BucketDuration(minutes int) DurationCategory {
	switch {
	case minutes <= 0:
		return DurationUnknown
	case minutes <= shortMaxMinutes:
		return DurationShort
	case minutes <= mediumMaxMinutes:
		return DurationMedium
	default:
		return DurationLong
	}
}

// ValidDurationCategory reports whether s names a known duration bucket.
func ValidDurationCategory(s string) bool {
	switch DurationCategory(s) {
	case DurationShort, DurationMedium, DurationLong:
		return true
	default:
		return false
	}
}

// DurationBucket describes one duration category for filter option listings.
type DurationBucket struct {
	Value      string `json:"value"`
	Label      string `json:"label"`
	MinMinutes int    `json:"minMinutes"`
	MaxMinutes int    `json:"maxMinutes,omitempty"`
}

// DurationBuckets returns the fixed set of duration categories, in
// ascending runtime order.
func DurationBuckets() []DurationBucket {
	return []DurationBucket{
		{Value: string(DurationShort), Label: "Short (up to 2 hours)", MinMinutes: 0, MaxMinutes: shortMaxMinutes},
		{Value: string(DurationMedium), Label: "Medium (2 to 8 hours)", MinMinutes: shortMaxMinutes + 1, MaxMinutes: mediumMaxMinutes},
		{Value: string(DurationLong), Label: "Long (over 8 hours)", MinMinutes: mediumMaxMinutes + 1},
	}
}

// Episode is a single audio section of a book, pointing at the hosted file.
type Episode struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	AudioURL      string `json:"audioUrl"`
	Duration      int    `json:"duration,omitempty"` // minutes
	Language      string `json:"language,omitempty"`
}

// Book represents an audiobook in the catalog.
type Book struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"` // upstream LibriVox project identifier
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Year        int    `json:"year,omitempty"`

	// Duration is the total runtime in minutes. DurationCategory is
	// derived from it by Normalize.
	Duration         int              `json:"duration"`
	DurationCategory DurationCategory `json:"durationCategory,omitempty"`

	// Genre is the single primary classification. Tags carries the full
	// genre set; Normalize guarantees it contains Genre.
	Genre string   `json:"genre,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	Image         string    `json:"image,omitempty"`
	LibriVoxURL   string    `json:"librivoxUrl,omitempty"`
	RSSURL        string    `json:"rssUrl,omitempty"`
	TotalSections int       `json:"totalSections,omitempty"`
	Episodes      []Episode `json:"episodes,omitempty"`

	// SearchText is a folded concatenation of the searchable fields,
	// maintained by Normalize.
	SearchText string `json:"searchText,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize recomputes the derived fields of a book in place. It is
// idempotent: applying it twice yields the same record as applying it
// once. Every write path calls this before persisting.
func (b *Book) Normalize() {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)

	b.Language = strings.TrimSpace(b.Language)
	if b.Language == "" {
		b.Language = DefaultLanguage
	}

	b.Genre = strings.TrimSpace(b.Genre)
	if b.Genre == "" {
		b.Genre = DefaultGenre
	}
	b.Tags = mergeTags(b.Genre, b.Tags)

	b.DurationCategory = BucketDuration(b.Duration)

	parts := make([]string, 0, 3+len(b.Tags))
	parts = append(parts, b.Title, b.Author, b.Description)
	parts = append(parts, b.Tags...)
	b.SearchText = normalize.SearchText(parts...)
}

// dedupeStrings trims entries and removes duplicates and blanks,
// keeping first-occurrence order. Duplicate detection is
// case-insensitive; the first spelling wins.
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mergeTags produces the tag list for a book: the primary genre first,
// followed by the remaining distinct tags in their original order.
func mergeTags(genre string, tags []string) []string {
	merged := make([]string, 0, 1+len(tags))
	merged = append(merged, genre)
	merged = append(merged, tags...)
	return dedupeStrings(merged)
}
