// Package source contains the trend source adapters: each adapter
// turns one provider's notion of "trending" into RawTrendItems. A
// failing source contributes zero items and never aborts the batch.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/core/domain"
	"github.com/trendscout/trendscout/internal/platform/observability"
	"github.com/trendscout/trendscout/internal/process/normalize"
)

// Adapter supplies raw trend items from one provider.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawTrendItem, error)
}

// FetchAll collects items from every adapter, isolating per-source
// failures, capping per-source volume, and dropping exact-text
// duplicates across sources. Items keep first-seen order.
func FetchAll(ctx context.Context, adapters []Adapter, timeout time.Duration, maxPerSource int, logger *zerolog.Logger) []domain.RawTrendItem {
	var combined []domain.RawTrendItem

	seen := make(map[string]struct{})

	for _, adapter := range adapters {
		items, err := fetchOne(ctx, adapter, timeout)
		if err != nil {
			logger.Warn().Err(err).Str("source", adapter.Name()).Msg("trend source failed, skipping")

			continue
		}

		if maxPerSource > 0 && len(items) > maxPerSource {
			items = items[:maxPerSource]
		}

		observability.TrendsFetched.WithLabelValues(adapter.Name()).Add(float64(len(items)))
		logger.Info().Str("source", adapter.Name()).Int("items", len(items)).Msg("fetched trends")

		for _, item := range items {
			key := normalize.Key(item.Text)
			if key == "" {
				continue
			}

			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			combined = append(combined, item)
		}
	}

	return combined
}

func fetchOne(ctx context.Context, adapter Adapter, timeout time.Duration) ([]domain.RawTrendItem, error) {
	if timeout <= 0 {
		return adapter.Fetch(ctx)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return adapter.Fetch(fetchCtx)
}

// snippet bounds context strings taken from provider descriptions.
func snippet(text string, maxLen int) string {
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	return string(runes[:maxLen]) + "..."
}
