package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// GoogleTrends ingests a CSV export of daily search trends. The export
// is produced out of band; rows older than maxAge are dropped. Expected
// columns are query, optional category context and optional timestamp.
type GoogleTrends struct {
	csvPath string
	maxAge  time.Duration
	now     func() time.Time
}

func NewGoogleTrends(csvPath string, maxAge time.Duration) *GoogleTrends {
	return &GoogleTrends{csvPath: csvPath, maxAge: maxAge, now: time.Now}
}

func (g *GoogleTrends) Name() string { return domain.SourceGoogleTrends }

func (g *GoogleTrends) Fetch(_ context.Context) ([]domain.RawTrendItem, error) {
	file, err := os.Open(g.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open trends export: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trends export: %w", err)
	}

	cutoff := g.now().Add(-g.maxAge)

	var items []domain.RawTrendItem

	for i, record := range records {
		if len(record) == 0 || record[0] == "" {
			continue
		}

		// Header row.
		if i == 0 && record[0] == "query" {
			continue
		}

		if len(record) >= 3 && record[2] != "" {
			seen, err := dateparse.ParseAny(record[2])
			if err == nil && g.maxAge > 0 && seen.Before(cutoff) {
				continue
			}
		}

		item := domain.RawTrendItem{
			ID:     uuid.NewString(),
			Text:   record[0],
			Source: domain.SourceGoogleTrends,
		}
		if len(record) >= 2 {
			item.Context = record[1]
		}

		items = append(items, item)
	}

	return items, nil
}
