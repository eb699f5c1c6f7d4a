package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trendscout/trendscout/internal/core/domain"
)

func writeTrendsCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trends.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestGoogleTrendsFetch(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	csv := "query,category,seen_at\n" +
		"Dune Part Two,Entertainment,2026-09-01T10:00:00Z\n" +
		"old query,Entertainment,2026-08-20T10:00:00Z\n" +
		"no timestamp,Sports\n" +
		",,\n"

	adapter := NewGoogleTrends(writeTrendsCSV(t, csv), 48*time.Hour)
	adapter.now = func() time.Time { return now }

	items, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "Dune Part Two", items[0].Text)
	require.Equal(t, "Entertainment", items[0].Context)
	require.Equal(t, domain.SourceGoogleTrends, items[0].Source)

	require.Equal(t, "no timestamp", items[1].Text)
	require.Equal(t, "Sports", items[1].Context)
}

func TestGoogleTrendsFetchMissingFile(t *testing.T) {
	adapter := NewGoogleTrends(filepath.Join(t.TempDir(), "absent.csv"), time.Hour)

	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
}
