package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/trendscout/trendscout/internal/core/domain"
	"github.com/trendscout/trendscout/internal/platform/htmlutils"
)

const redditSnippetLen = 300

// Reddit reads the hot feed of a movie subreddit over RSS.
type Reddit struct {
	feedURL string
	parser  *gofeed.Parser
}

func NewReddit(feedURL string) *Reddit {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 30 * time.Second}
	parser.UserAgent = "trendscout/1.0"

	return &Reddit{feedURL: feedURL, parser: parser}
}

func (r *Reddit) Name() string { return domain.SourceReddit }

func (r *Reddit) Fetch(ctx context.Context) ([]domain.RawTrendItem, error) {
	feed, err := r.parser.ParseURLWithContext(r.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse reddit feed: %w", err)
	}

	items := make([]domain.RawTrendItem, 0, len(feed.Items))

	for _, entry := range feed.Items {
		if entry.Title == "" {
			continue
		}

		body := entry.Content
		if body == "" {
			body = entry.Description
		}

		items = append(items, domain.RawTrendItem{
			ID:      uuid.NewString(),
			Text:    entry.Title,
			Context: snippet(htmlutils.StripMarkup(body), redditSnippetLen),
			Link:    entry.Link,
			Source:  domain.SourceReddit,
		})
	}

	return items, nil
}
