package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 15 * time.Second
	typeMovie      = "movie"

	omdbResponseTrue = "True"
	omdbErrNotFound  = "Movie not found!"
)

// omdbResult models both the direct-title payload and search entries.
type omdbResult struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
}

type omdbResponse struct {
	omdbResult
	Search   []omdbResult `json:"Search"`
	Response string       `json:"Response"`
	Error    string       `json:"Error"`
}

// Client queries the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit bounds outgoing queries to rps requests per second.
// The free OMDb tier allows only a small number of daily requests.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates an OMDb catalog client.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}

	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Lookup queries OMDb for the title, trying an exact-title match first
// and falling back to search. The provider's own ranking decides among
// ambiguous search results: the first movie entry wins. Year 0 means no
// year hint.
func (c *Client) Lookup(ctx context.Context, title string, year int) (*Match, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}

	params := url.Values{}
	params.Set("t", title)
	params.Set("type", typeMovie)

	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	resp, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	if resp.Response == omdbResponseTrue && resp.ImdbID != "" {
		return matchFromResult(resp.omdbResult), nil
	}

	if resp.Error != "" && resp.Error != omdbErrNotFound {
		return nil, fmt.Errorf("omdb: %s", resp.Error)
	}

	return c.search(ctx, title, year)
}

// search is the fallback query when the exact-title endpoint misses.
func (c *Client) search(ctx context.Context, title string, year int) (*Match, error) {
	params := url.Values{}
	params.Set("s", title)

	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	resp, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	if resp.Response != omdbResponseTrue {
		return nil, ErrNotFound
	}

	for _, entry := range resp.Search {
		if entry.Type == typeMovie && entry.ImdbID != "" {
			return matchFromResult(entry), nil
		}
	}

	return nil, ErrNotFound
}

func (c *Client) query(ctx context.Context, params url.Values) (*omdbResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build omdb request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}

	return &payload, nil
}

// checkStatus maps HTTP status codes to the error taxonomy: 429 and 5xx
// are transient, everything else non-2xx is a hard failure.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RetryAfterError{Delay: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: omdb returned status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("omdb returned status %d", resp.StatusCode)
	default:
		return nil
	}
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		return time.Until(at)
	}

	return 0
}

func matchFromResult(r omdbResult) *Match {
	return &Match{
		ExternalID: strings.TrimSpace(r.ImdbID),
		Title:      strings.TrimSpace(r.Title),
		Year:       parseYear(r.Year),
	}
}

// parseYear handles OMDb year strings like "2023" and ranges like
// "2010–2014" by taking the leading 4 digits.
func parseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if len(raw) < 4 {
		return 0
	}

	year, err := strconv.Atoi(raw[:4])
	if err != nil {
		return 0
	}

	return year
}

var _ Searcher = (*Client)(nil)
