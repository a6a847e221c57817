// Package librivox is a rate-limited client for the public LibriVox catalog API.
package librivox

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bookradio/bookradio-server/internal/ratelimit"
)

const (
	// LibriVox is a volunteer project, be polite: 1 request per second, small burst.
	defaultRPS   = 1.0
	defaultBurst = 2

	defaultTimeout = 30 * time.Second

	apiHost = "librivox.org"
)

// Client is a rate-limited LibriVox API client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedLimiter
	logger  *slog.Logger
}

// New creates a new LibriVox client.
func New(logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Author is a contributor entry on an audiobook feed item.
type Author struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Genre is a catalog genre attached to an audiobook.
type Genre struct {
	Name string `json:"name"`
}

// Audiobook is one item of the audiobooks feed. The API serializes most
// numeric fields as strings.
type Audiobook struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Language      string   `json:"language"`
	CopyrightYear string   `json:"copyright_year"`
	TotalTime     string   `json:"totaltime"`
	NumSections   string   `json:"num_sections"`
	URLLibriVox   string   `json:"url_librivox"`
	URLRSS        string   `json:"url_rss"`
	Authors       []Author `json:"authors"`
	Genres        []Genre  `json:"genres"`
}

// Audiotrack is one item of the audiotracks feed for a project.
type Audiotrack struct {
	SectionNumber string `json:"section_number"`
	Title         string `json:"title"`
	Playtime      string `json:"playtime"`
	Language      string `json:"language"`
	URL           string `json:"url"`
}

type audiobooksResponse struct {
	Books []Audiobook `json:"books"`
}

type audiotracksResponse struct {
	Tracks []Audiotrack `json:"audiotracks"`
}

// Audiobooks fetches one page of the audiobooks feed.
func (c *Client) Audiobooks(ctx context.Context, limit, offset int) ([]Audiobook, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("extended", "1")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	body, err := c.doRequest(ctx, "/api/feed/audiobooks/", query)
	if err != nil {
		return nil, err
	}

	var resp audiobooksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode audiobooks feed: %w", err)
	}
	return resp.Books, nil
}

// Audiotracks fetches the track list of a project.
func (c *Client) Audiotracks(ctx context.Context, projectID string) ([]Audiotrack, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("project_id", projectID)

	body, err := c.doRequest(ctx, "/api/feed/audiotracks/", query)
	if err != nil {
		return nil, err
	}

	var resp audiotracksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode audiotracks feed: %w", err)
	}
	return resp.Tracks, nil
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, apiHost); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := url.URL{
		Scheme:   "https",
		Host:     apiHost,
		Path:     path,
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BookRadio/1.0")

	c.logger.Debug("librivox request", "path", path, "query", query.Encode())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
