package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/trendscout/trendscout/internal/core/domain"
)

const (
	tmdbDefaultBaseURL = "https://api.themoviedb.org/3"
	tmdbSnippetLen     = 300
)

// TMDB fetches this week's trending movies and TV shows. The adapter
// name is "tmdb"; individual items carry tmdb_movie or tmdb_tv.
type TMDB struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type TMDBOption func(*TMDB)

func WithTMDBHTTPClient(client *http.Client) TMDBOption {
	return func(t *TMDB) { t.client = client }
}

func NewTMDB(apiKey, baseURL string, opts ...TMDBOption) *TMDB {
	if baseURL == "" {
		baseURL = tmdbDefaultBaseURL
	}

	t := &TMDB{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *TMDB) Name() string { return "tmdb" }

func (t *TMDB) Fetch(ctx context.Context) ([]domain.RawTrendItem, error) {
	movies, err := t.trending(ctx, "movie")
	if err != nil {
		return nil, err
	}

	shows, err := t.trending(ctx, "tv")
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawTrendItem, 0, len(movies)+len(shows))

	for _, entry := range movies {
		if item, ok := entry.toItem(domain.SourceTMDBMovie); ok {
			items = append(items, item)
		}
	}

	for _, entry := range shows {
		if item, ok := entry.toItem(domain.SourceTMDBTV); ok {
			items = append(items, item)
		}
	}

	return items, nil
}

type tmdbEntry struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
}

func (e tmdbEntry) toItem(source string) (domain.RawTrendItem, bool) {
	text := e.Title
	if text == "" {
		text = e.Name
	}

	if text == "" {
		return domain.RawTrendItem{}, false
	}

	return domain.RawTrendItem{
		ID:      uuid.NewString(),
		Text:    text,
		Context: snippet(e.Overview, tmdbSnippetLen),
		Source:  source,
	}, true
}

func (t *TMDB) trending(ctx context.Context, mediaType string) ([]tmdbEntry, error) {
	endpoint := fmt.Sprintf("%s/trending/%s/week?api_key=%s", t.baseURL, mediaType, url.QueryEscape(t.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tmdb request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb trending %s: %w", mediaType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb trending %s: unexpected status %d", mediaType, resp.StatusCode)
	}

	var payload struct {
		Results []tmdbEntry `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}

	return payload.Results, nil
}
