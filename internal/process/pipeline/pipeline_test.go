package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/trendscout/internal/catalog"
	"github.com/trendscout/trendscout/internal/core/domain"
	"github.com/trendscout/trendscout/internal/core/llm"
	"github.com/trendscout/trendscout/internal/process/normalize"
	db "github.com/trendscout/trendscout/internal/storage"
)

type fakeLLM struct {
	classifyCalls int
	resolveCalls  int

	verdict     llm.Verdict
	classifyErr error

	resolution  llm.Resolution
	resolveErrs []error
}

func (f *fakeLLM) Classify(_ context.Context, _, _ string) (llm.Verdict, error) {
	f.classifyCalls++

	return f.verdict, f.classifyErr
}

func (f *fakeLLM) ResolveTitle(_ context.Context, _, _ string) (llm.Resolution, error) {
	f.resolveCalls++

	if len(f.resolveErrs) > 0 {
		err := f.resolveErrs[0]
		f.resolveErrs = f.resolveErrs[1:]

		if err != nil {
			return llm.Resolution{}, err
		}
	}

	return f.resolution, nil
}

type fakeSearcher struct {
	calls int
	match *catalog.Match
	err   error
}

func (f *fakeSearcher) Lookup(_ context.Context, _ string, _ int) (*catalog.Match, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.match, nil
}

type movieKey struct {
	title string
	year  int
}

// fakeStore mirrors the upsert semantics of the real store: first write
// inserts, later writes refresh, and an empty external id never
// overwrites a known one.
type fakeStore struct {
	rows map[movieKey]*db.MovieRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[movieKey]*db.MovieRecord)}
}

func (f *fakeStore) FindMovie(_ context.Context, normalizedTitle string, year int) (*db.MovieRecord, error) {
	rec, ok := f.rows[movieKey{title: normalizedTitle, year: year}]
	if !ok {
		return nil, nil
	}

	clone := *rec

	return &clone, nil
}

func (f *fakeStore) UpsertMovie(_ context.Context, rec *db.MovieRecord) (bool, error) {
	key := movieKey{title: rec.NormalizedTitle, year: rec.Year}

	existing, ok := f.rows[key]
	if !ok {
		clone := *rec
		f.rows[key] = &clone

		return true, nil
	}

	if existing.ExternalID == "" {
		existing.ExternalID = rec.ExternalID
	}

	rec.ExternalID = existing.ExternalID

	return false, nil
}

func newTestPipeline(llmClient llm.Client, searcher catalog.Searcher, store Store) *Pipeline {
	logger := zerolog.Nop()

	cfg := Config{
		LLMTimeout: time.Second,
		Retry: catalog.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			RetryAfterCap: 10 * time.Millisecond,
		},
	}

	return New(cfg, normalize.New(0), llmClient, searcher, store, &logger)
}

func item(text, context string) domain.RawTrendItem {
	return domain.RawTrendItem{ID: text, Text: text, Context: context, Source: domain.SourceReddit}
}

func TestRun_ResolvesAndStores(t *testing.T) {
	llmClient := &fakeLLM{
		verdict:    llm.VerdictMovie,
		resolution: llm.Resolution{Title: "Oppenheimer", Year: 2023},
	}
	searcher := &fakeSearcher{match: &catalog.Match{ExternalID: "tt15398776", Title: "Oppenheimer", Year: 2023}}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("Oppenheimer", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusStored])
	require.False(t, summary.HasErrors())
	require.Equal(t, 1, llmClient.classifyCalls)
	require.Equal(t, 1, llmClient.resolveCalls)

	rec := store.rows[movieKey{title: "oppenheimer", year: 2023}]
	require.NotNil(t, rec)
	require.Equal(t, "tt15398776", rec.ExternalID)
}

func TestRun_NoiseFilteredWithoutExternalCalls(t *testing.T) {
	llmClient := &fakeLLM{}
	searcher := &fakeSearcher{}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("#MondayMotivation", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusFilteredOut])
	require.Zero(t, llmClient.classifyCalls)
	require.Zero(t, llmClient.resolveCalls)
	require.Zero(t, searcher.calls)
	require.Empty(t, store.rows)
}

func TestRun_HeuristicAcceptSkipsClassification(t *testing.T) {
	llmClient := &fakeLLM{resolution: llm.Resolution{Title: "Inside Out 2", Year: 2024}}
	searcher := &fakeSearcher{match: &catalog.Match{ExternalID: "tt22022452", Year: 2024}}

	p := newTestPipeline(llmClient, searcher, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("Inside Out 2", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusStored])
	require.Zero(t, llmClient.classifyCalls)
	require.Equal(t, 1, llmClient.resolveCalls)
}

func TestRun_ClassificationFailureRejectsClosed(t *testing.T) {
	llmClient := &fakeLLM{classifyErr: errors.New("provider unavailable")}
	searcher := &fakeSearcher{}

	p := newTestPipeline(llmClient, searcher, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("barbenheimer", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusFilteredOut])
	require.False(t, summary.HasErrors())
	require.Zero(t, searcher.calls)
}

func TestRun_UnparseableResolutionRetriedOnce(t *testing.T) {
	parseErr := fmt.Errorf("%w: raw=%q", llm.ErrUnparseableResponse, "I think it might be a film?")

	llmClient := &fakeLLM{
		verdict:     llm.VerdictMovie,
		resolveErrs: []error{parseErr, nil},
		resolution:  llm.Resolution{Title: "Dune: Part Two", Year: 2024},
	}
	searcher := &fakeSearcher{match: &catalog.Match{ExternalID: "tt15239678", Year: 2024}}

	p := newTestPipeline(llmClient, searcher, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("dune part two", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusStored])
	require.Equal(t, 2, llmClient.resolveCalls)
}

func TestRun_DoubleParseFailureIsItemError(t *testing.T) {
	parseErr := fmt.Errorf("%w: raw=%q", llm.ErrUnparseableResponse, "not json at all")

	llmClient := &fakeLLM{
		verdict:     llm.VerdictMovie,
		resolveErrs: []error{parseErr, parseErr},
	}
	searcher := &fakeSearcher{}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("dune part two", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusErrored])
	require.True(t, summary.HasErrors())
	require.Equal(t, 2, llmClient.resolveCalls)
	require.Zero(t, searcher.calls)
	require.Empty(t, store.rows)

	require.Len(t, summary.Errors, 1)
	require.Contains(t, summary.Errors[0].Detail, "not json at all")
}

func TestRun_TransportErrorNotRetried(t *testing.T) {
	llmClient := &fakeLLM{
		verdict:     llm.VerdictMovie,
		resolveErrs: []error{errors.New("connection reset")},
	}

	p := newTestPipeline(llmClient, &fakeSearcher{}, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("dune part two", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusErrored])
	require.Equal(t, 1, llmClient.resolveCalls)
}

func TestRun_CatalogMissStoredWithoutID(t *testing.T) {
	llmClient := &fakeLLM{resolution: llm.Resolution{Title: "Obscure Festival Film", Year: 2025}}
	searcher := &fakeSearcher{err: catalog.ErrNotFound}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("Obscure Festival Film", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusLookupFail])
	require.False(t, summary.HasErrors())

	rec := store.rows[movieKey{title: "obscure festival film", year: 2025}]
	require.NotNil(t, rec)
	require.Empty(t, rec.ExternalID)

	// A later run finds the title in the catalog and fills the id in.
	searcher.err = nil
	searcher.match = &catalog.Match{ExternalID: "tt9999999", Year: 2025}

	summary = p.Run(context.Background(), []domain.RawTrendItem{item("Obscure Festival Film", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusDuplicate])
	require.Equal(t, "tt9999999", rec.ExternalID)
}

func TestRun_LookupBackfillAfterMissKeepsOneRow(t *testing.T) {
	logger := zerolog.Nop()

	store, err := db.Open(filepath.Join(t.TempDir(), "movies.db"), &logger)
	require.NoError(t, err)

	defer store.Close()

	llmClient := &fakeLLM{resolution: llm.Resolution{Title: "Totally Fictional Movie 9000"}}
	searcher := &fakeSearcher{err: catalog.ErrNotFound}

	p := newTestPipeline(llmClient, searcher, store)

	first := p.Run(context.Background(), []domain.RawTrendItem{item("Totally Fictional Movie 9000", "")})
	require.Equal(t, 1, first.Counts[domain.StatusLookupFail])

	// The catalog learns about the title; the year-less record must be
	// refreshed in place, not shadowed by a new row under the catalog's
	// year.
	searcher.err = nil
	searcher.match = &catalog.Match{ExternalID: "tt9999999", Title: "Totally Fictional Movie 9000", Year: 2025}

	second := p.Run(context.Background(), []domain.RawTrendItem{item("Totally Fictional Movie 9000", "")})
	require.Equal(t, 1, second.Counts[domain.StatusDuplicate])

	count, err := store.CountMovies(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rec, err := store.FindMovie(context.Background(), "totally fictional movie 9000", 0)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "tt9999999", rec.ExternalID)
}

func TestRun_CatalogYearAdoptedForNewTitle(t *testing.T) {
	llmClient := &fakeLLM{verdict: llm.VerdictMovie, resolution: llm.Resolution{Title: "Challengers"}}
	searcher := &fakeSearcher{match: &catalog.Match{ExternalID: "tt16426418", Year: 2024}}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("challengers", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusStored])

	rec := store.rows[movieKey{title: "challengers", year: 2024}]
	require.NotNil(t, rec)
	require.Equal(t, 2024, rec.Year)
}

func TestRun_TransientExhaustionIsItemError(t *testing.T) {
	llmClient := &fakeLLM{resolution: llm.Resolution{Title: "Furiosa Saga", Year: 2024}}
	searcher := &fakeSearcher{err: fmt.Errorf("%w: status 503", catalog.ErrTransient)}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("Furiosa Saga", "")})

	require.Equal(t, 1, summary.Counts[domain.StatusErrored])
	require.Equal(t, 3, searcher.calls)
	require.Empty(t, store.rows)
}

func TestRun_SecondRunIsDuplicate(t *testing.T) {
	llmClient := &fakeLLM{resolution: llm.Resolution{Title: "Inside Out 2", Year: 2024}}
	searcher := &fakeSearcher{match: &catalog.Match{ExternalID: "tt22022452", Year: 2024}}
	store := newFakeStore()

	p := newTestPipeline(llmClient, searcher, store)

	first := p.Run(context.Background(), []domain.RawTrendItem{item("Inside Out 2", "")})
	second := p.Run(context.Background(), []domain.RawTrendItem{item("Inside Out 2", "")})

	require.Equal(t, 1, first.Counts[domain.StatusStored])
	require.Equal(t, 1, second.Counts[domain.StatusDuplicate])
	require.Len(t, store.rows, 1)
}

func TestRun_EmptyResolutionFiltersItem(t *testing.T) {
	llmClient := &fakeLLM{verdict: llm.VerdictMovie, resolution: llm.Resolution{}}
	searcher := &fakeSearcher{}

	p := newTestPipeline(llmClient, searcher, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{item("some gossip", "movie rumors")})

	require.Equal(t, 1, summary.Counts[domain.StatusFilteredOut])
	require.Zero(t, searcher.calls)
}

type panickingLLM struct{ fakeLLM }

func (p *panickingLLM) ResolveTitle(_ context.Context, _, _ string) (llm.Resolution, error) {
	panic("resolver blew up")
}

func TestRun_PanicIsolatedPerItem(t *testing.T) {
	llmClient := &panickingLLM{fakeLLM{verdict: llm.VerdictMovie}}
	searcher := &fakeSearcher{}

	p := newTestPipeline(llmClient, searcher, newFakeStore())

	summary := p.Run(context.Background(), []domain.RawTrendItem{
		item("Inside Out 2", ""),
		item("#MondayMotivation", ""),
	})

	require.Equal(t, 1, summary.Counts[domain.StatusErrored])
	require.Equal(t, 1, summary.Counts[domain.StatusFilteredOut])
	require.Contains(t, summary.Errors[0].Detail, "panic")
}
