package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// Twitter scrapes a public trend aggregator page, since the official
// trends API sits behind a paid tier. Only the most recent trend list
// on the page is read.
type Twitter struct {
	pageURL string
	client  *http.Client
}

func NewTwitter(pageURL string) *Twitter {
	return &Twitter{
		pageURL: pageURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Twitter) Name() string { return domain.SourceTwitter }

func (t *Twitter) Fetch(ctx context.Context) ([]domain.RawTrendItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build trends request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; trendscout/1.0)")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends page: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse trends page: %w", err)
	}

	var items []domain.RawTrendItem

	doc.Find("ol.trend-card__list").First().Find("li a.trend-link").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if text == "" {
			return
		}

		items = append(items, domain.RawTrendItem{
			ID:     uuid.NewString(),
			Text:   text,
			Link:   sel.AttrOr("href", ""),
			Source: domain.SourceTwitter,
		})
	})

	return items, nil
}
