package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trendscout/trendscout/internal/core/domain"
)

func TestTMDBFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/trending/movie/week":
			_, _ = w.Write([]byte(`{"results":[{"title":"Dune: Part Two","overview":"Paul Atreides unites with the Fremen."},{"title":""}]}`))
		case "/trending/tv/week":
			_, _ = w.Write([]byte(`{"results":[{"name":"Severance","overview":"Employees undergo a procedure."}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	adapter := NewTMDB("test-key", server.URL, WithTMDBHTTPClient(server.Client()))

	items, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, "Dune: Part Two", items[0].Text)
	require.Equal(t, domain.SourceTMDBMovie, items[0].Source)
	require.Contains(t, items[0].Context, "Paul Atreides")

	require.Equal(t, "Severance", items[1].Text)
	require.Equal(t, domain.SourceTMDBTV, items[1].Source)
}

func TestTMDBFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewTMDB("test-key", server.URL, WithTMDBHTTPClient(server.Client()))

	_, err := adapter.Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 500")
}
