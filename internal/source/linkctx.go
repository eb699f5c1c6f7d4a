package source

import (
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// LinkEnricher fills in missing item context by extracting the readable
// body of the item's linked page. Enrichment is best effort: a failed
// extraction leaves the item unchanged.
type LinkEnricher struct {
	timeout  time.Duration
	maxChars int
	logger   *zerolog.Logger

	extract func(url string, timeout time.Duration) (string, error)
}

func NewLinkEnricher(timeout time.Duration, maxChars int, logger *zerolog.Logger) *LinkEnricher {
	return &LinkEnricher{
		timeout:  timeout,
		maxChars: maxChars,
		logger:   logger,
		extract:  extractReadable,
	}
}

// Enrich mutates items in place, fetching link context for items that
// have a link but no context yet.
func (e *LinkEnricher) Enrich(items []domain.RawTrendItem) {
	for i := range items {
		item := &items[i]
		if item.Link == "" || item.Context != "" {
			continue
		}

		text, err := e.extract(item.Link, e.timeout)
		if err != nil {
			e.logger.Debug().Err(err).Str("link", item.Link).Msg("link context extraction failed")

			continue
		}

		item.Context = snippet(text, e.maxChars)
	}
}

func extractReadable(url string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(url, timeout)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}
