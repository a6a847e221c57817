// Package main provides a tool to seed the catalog from the public LibriVox API.
//
// It pages through the audiobooks feed, pulls the track list of each project,
// and writes books through the normalizing create path, so seeded records get
// the same duration categories and search text as API-created ones. Already
// imported projects are skipped.
//
// Usage:
//
//	DB_PATH=~/BookRadio/data/catalog.db go run ./cmd/seed
//	go run ./cmd/seed --total 2000 --batch 100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/bookradio/bookradio-server/internal/config"
	"github.com/bookradio/bookradio-server/internal/domain"
	domainerrors "github.com/bookradio/bookradio-server/internal/errors"
	"github.com/bookradio/bookradio-server/internal/librivox"
	"github.com/bookradio/bookradio-server/internal/service"
	"github.com/bookradio/bookradio-server/internal/store"
	"github.com/bookradio/bookradio-server/internal/validation"
)

var (
	totalBooks = flag.Int("total", 500, "Number of catalog entries to fetch")
	batchSize  = flag.Int("batch", 50, "Feed page size")
	withTracks = flag.Bool("tracks", true, "Fetch the track list of each project")
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookRadio/data/catalog.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.New(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	catalog := service.NewCatalogService(s, validation.New(), config.CatalogConfig{
		PageSize:    20,
		MaxPageSize: 100,
	}, logger)

	client := librivox.New(logger)
	defer client.Close()

	// Stop cleanly on Ctrl-C, whatever was imported so far stays.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var created, skipped, failed int

	for offset := 0; offset < *totalBooks; offset += *batchSize {
		limit := min(*batchSize, *totalBooks-offset)
		fmt.Printf("Fetching books %d to %d\n", offset+1, offset+limit)

		books, err := client.Audiobooks(ctx, limit, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Fatalf("Failed to fetch audiobooks feed: %v", err)
		}
		if len(books) == 0 {
			fmt.Println("Feed exhausted")
			break
		}

		for _, book := range books {
			input := bookInput(book)

			if *withTracks {
				tracks, err := client.Audiotracks(ctx, book.ID)
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					fmt.Printf("  No track list for project %s: %v\n", book.ID, err)
				}
				input.Episodes = episodes(tracks)
			}

			_, err := catalog.CreateBook(ctx, input)
			switch {
			case err == nil:
				created++
			case errors.Is(err, domainerrors.ErrDuplicateSourceID):
				skipped++
			default:
				failed++
				fmt.Printf("  Failed to import %q (project %s): %v\n", book.Title, book.ID, err)
			}
		}

		if ctx.Err() != nil {
			fmt.Println("Interrupted")
			break
		}
	}

	fmt.Printf("Done: %d created, %d already present, %d failed\n", created, skipped, failed)
}

// bookInput maps a feed item to a create request. The first listed
// genre becomes the primary one; the full set goes to tags.
func bookInput(b librivox.Audiobook) service.BookInput {
	genres := b.GenreNames()
	primary := ""
	if len(genres) > 0 {
		primary = genres[0]
	}

	return service.BookInput{
		ProjectID:     b.ID,
		Title:         strings.TrimSpace(b.Title),
		Author:        b.PrimaryAuthor(),
		Description:   plainDescription(b.Description),
		Language:      strings.TrimSpace(b.Language),
		Year:          librivox.ParseYear(b.CopyrightYear),
		Duration:      librivox.ParseTotalTime(b.TotalTime),
		Genre:         primary,
		Tags:          genres,
		Image:         b.CoverURL(),
		LibriVoxURL:   b.URLLibriVox,
		RSSURL:        b.URLRSS,
		TotalSections: b.Sections(),
	}
}

// episodes maps the track list to embedded episodes, keeping feed order.
func episodes(tracks []librivox.Audiotrack) []domain.Episode {
	if len(tracks) == 0 {
		return nil
	}

	eps := make([]domain.Episode, 0, len(tracks))
	for i, track := range tracks {
		eps = append(eps, domain.Episode{
			EpisodeNumber: i + 1,
			Title:         strings.TrimSpace(track.Title),
			AudioURL:      track.URL,
			Duration:      librivox.ParsePlaytime(track.Playtime),
			Language:      strings.TrimSpace(track.Language),
		})
	}
	return eps
}

// htmlTagPattern matches common HTML tags to detect markup in descriptions.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// plainDescription converts an HTML feed description to Markdown. Plain-text
// descriptions pass through unchanged.
func plainDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
