package source

import (
	"context"

	"github.com/google/uuid"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// fallbackKeywords is a static entertainment list used when every live
// source fails, so the pipeline always has material to exercise.
var fallbackKeywords = []string{
	"Deadpool & Wolverine",
	"Inside Out 2",
	"Dune Part Two",
	"Oppenheimer",
	"Bad Boys: Ride or Die",
	"The Marvels",
	"Barbie",
	"Furiosa",
	"Challengers",
	"The Fall Guy",
	"Stranger Things",
	"Wednesday",
	"The Crown",
	"Game of Thrones",
	"Breaking Bad",
	"Trailer",
	"Box office",
	"Top cast",
	"Oscars",
	"Emmy Awards",
	"Netflix",
	"Streaming",
}

// Fallback emits the static keyword list.
type Fallback struct{}

func NewFallback() *Fallback { return &Fallback{} }

func (f *Fallback) Name() string { return domain.SourceFallback }

func (f *Fallback) Fetch(_ context.Context) ([]domain.RawTrendItem, error) {
	items := make([]domain.RawTrendItem, 0, len(fallbackKeywords))

	for _, keyword := range fallbackKeywords {
		items = append(items, domain.RawTrendItem{
			ID:     uuid.NewString(),
			Text:   keyword,
			Source: domain.SourceFallback,
		})
	}

	return items, nil
}
