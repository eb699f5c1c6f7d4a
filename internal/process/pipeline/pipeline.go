// Package pipeline drives each trend item through normalization,
// relevance filtering, title resolution, catalog lookup and
// persistence. Items are isolated: one item's failure records an ERROR
// status and the batch continues.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/catalog"
	"github.com/trendscout/trendscout/internal/core/domain"
	"github.com/trendscout/trendscout/internal/core/llm"
	"github.com/trendscout/trendscout/internal/platform/observability"
	"github.com/trendscout/trendscout/internal/platform/worker"
	"github.com/trendscout/trendscout/internal/process/filters"
	"github.com/trendscout/trendscout/internal/process/normalize"
	db "github.com/trendscout/trendscout/internal/storage"
)

// Store is the persistence capability the pipeline needs.
type Store interface {
	FindMovie(ctx context.Context, normalizedTitle string, year int) (*db.MovieRecord, error)
	UpsertMovie(ctx context.Context, rec *db.MovieRecord) (inserted bool, err error)
}

var _ Store = (*db.DB)(nil)

// Config carries the pipeline's tunables.
type Config struct {
	LLMTimeout time.Duration
	Retry      catalog.RetryConfig
}

// Pipeline resolves a batch of raw trend items into stored movie
// records.
type Pipeline struct {
	cfg        Config
	normalizer *normalize.Normalizer
	llm        llm.Client
	catalog    catalog.Searcher
	store      Store
	logger     *zerolog.Logger
}

func New(cfg Config, normalizer *normalize.Normalizer, llmClient llm.Client, searcher catalog.Searcher, store Store, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		normalizer: normalizer,
		llm:        llmClient,
		catalog:    searcher,
		store:      store,
		logger:     logger,
	}
}

// Run processes every item and returns the batch summary. It only
// returns early when the context is canceled.
func (p *Pipeline) Run(ctx context.Context, items []domain.RawTrendItem) Summary {
	start := time.Now()

	summary := Summary{
		Total:  len(items),
		Counts: make(map[domain.Status]int),
	}

	for i := range items {
		if ctx.Err() != nil {
			break
		}

		state := p.processItem(ctx, items[i])

		summary.Counts[state.Status]++

		if state.Status == domain.StatusErrored {
			summary.Errors = append(summary.Errors, ItemError{
				Text:   state.Raw.Text,
				Source: state.Raw.Source,
				Detail: state.ErrorDetail,
			})
		}

		observability.PipelineProcessed.WithLabelValues(string(state.Status)).Inc()
	}

	observability.PipelineBatchDurationSeconds.Observe(time.Since(start).Seconds())

	summary.log(p.logger)

	return summary
}

// processItem walks one item through the stages until a terminal
// status. Panics inside a stage degrade to an ERROR status for that
// item only.
func (p *Pipeline) processItem(ctx context.Context, raw domain.RawTrendItem) (state *domain.TrendState) {
	state = &domain.TrendState{Raw: raw, Status: domain.StatusPending}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Str("text", raw.Text).Msg("panic while processing trend item")

			state.Status = domain.StatusErrored
			state.ErrorDetail = fmt.Sprintf("panic: %v", r)
		}
	}()

	state.NormalizedText = p.normalizer.Normalize(raw.Text)

	if !p.filter(ctx, state) {
		return state
	}

	if !p.resolve(ctx, state) {
		return state
	}

	p.lookupAndStore(ctx, state)

	return state
}

// filter applies the heuristic pass and, when inconclusive, the LLM
// gate. Classification failures reject the item rather than letting
// unvetted text through.
func (p *Pipeline) filter(ctx context.Context, state *domain.TrendState) bool {
	decision := filters.Evaluate(state.Raw.Text, state.NormalizedText, state.Raw.Context)

	switch decision {
	case filters.Reject:
		state.Candidate = domain.CandidateNo
		state.Status = domain.StatusFilteredOut

		return false
	case filters.Accept:
		state.Candidate = domain.CandidateYes

		return true
	}

	var verdict llm.Verdict

	err := worker.RunWithTimeout(ctx, p.cfg.LLMTimeout, func(ctx context.Context) error {
		var classifyErr error
		verdict, classifyErr = p.llm.Classify(ctx, state.NormalizedText, state.Raw.Context)

		return classifyErr
	})
	if err != nil {
		observability.LLMCalls.WithLabelValues(observability.OpClassify, observability.OutcomeError).Inc()
		p.logger.Warn().Err(err).Str("text", state.NormalizedText).Msg("classification failed, rejecting item")

		state.Candidate = domain.CandidateNo
		state.Status = domain.StatusFilteredOut

		return false
	}

	observability.LLMCalls.WithLabelValues(observability.OpClassify, observability.OutcomeOK).Inc()

	if !verdict.IsCandidate() {
		state.Candidate = domain.CandidateNo
		state.Status = domain.StatusFilteredOut

		return false
	}

	state.Candidate = domain.CandidateYes

	return true
}

// resolve extracts the canonical title. An unparseable response is
// retried once with the same input; a second one is an item error. The
// raw response travels in the error detail for diagnosis.
func (p *Pipeline) resolve(ctx context.Context, state *domain.TrendState) bool {
	resolution, err := p.resolveOnce(ctx, state)
	if err != nil && errors.Is(err, llm.ErrUnparseableResponse) {
		resolution, err = p.resolveOnce(ctx, state)
	}

	if err != nil {
		observability.LLMCalls.WithLabelValues(observability.OpResolve, observability.OutcomeError).Inc()

		state.Status = domain.StatusErrored
		state.ErrorDetail = fmt.Sprintf("title resolution: %v", err)

		return false
	}

	observability.LLMCalls.WithLabelValues(observability.OpResolve, observability.OutcomeOK).Inc()

	if resolution.Title == "" {
		// The model answered but could not name a movie.
		state.Status = domain.StatusFilteredOut

		return false
	}

	state.ResolvedTitle = resolution.Title
	state.ResolvedYear = resolution.Year
	state.Status = domain.StatusResolved

	return true
}

func (p *Pipeline) resolveOnce(ctx context.Context, state *domain.TrendState) (llm.Resolution, error) {
	var resolution llm.Resolution

	err := worker.RunWithTimeout(ctx, p.cfg.LLMTimeout, func(ctx context.Context) error {
		var resolveErr error
		resolution, resolveErr = p.llm.ResolveTitle(ctx, state.NormalizedText, state.Raw.Context)

		return resolveErr
	})

	return resolution, err
}

// adoptYear decides the year key for a title the resolver could not
// date. An earlier run may have stored the title without a year; that
// record keeps its key, so a now-successful lookup refreshes it in
// place instead of inserting a sibling row under the catalog's year.
func (p *Pipeline) adoptYear(ctx context.Context, title string, matchYear int) int {
	if matchYear == 0 {
		return 0
	}

	existing, err := p.store.FindMovie(ctx, normalize.Key(title), 0)
	if err != nil {
		p.logger.Warn().Err(err).Str("title", title).Msg("year-less record check failed, keeping year unset")

		return 0
	}

	if existing != nil {
		return 0
	}

	return matchYear
}

// lookupAndStore queries the catalog and persists the record. A
// definitive catalog miss still stores the title, without an external
// id, so repeat trends do not re-query the provider's miss path as new
// rows.
func (p *Pipeline) lookupAndStore(ctx context.Context, state *domain.TrendState) {
	match, err := catalog.LookupWithRetry(ctx, p.catalog, state.ResolvedTitle, state.ResolvedYear, p.cfg.Retry)

	switch {
	case err == nil:
		observability.CatalogLookups.WithLabelValues(observability.OutcomeOK).Inc()

		state.ExternalID = match.ExternalID
		if state.ResolvedYear == 0 {
			state.ResolvedYear = p.adoptYear(ctx, state.ResolvedTitle, match.Year)
		}
	case errors.Is(err, catalog.ErrNotFound):
		observability.CatalogLookups.WithLabelValues(observability.OutcomeNotFound).Inc()
	case errors.Is(err, catalog.ErrTransient):
		observability.CatalogLookups.WithLabelValues(observability.OutcomeTransient).Inc()

		state.Status = domain.StatusErrored
		state.ErrorDetail = fmt.Sprintf("catalog lookup retries exhausted: %v", err)

		return
	default:
		observability.CatalogLookups.WithLabelValues(observability.OutcomeError).Inc()

		state.Status = domain.StatusErrored
		state.ErrorDetail = fmt.Sprintf("catalog lookup: %v", err)

		return
	}

	rec := &db.MovieRecord{
		Title:           state.ResolvedTitle,
		NormalizedTitle: normalize.Key(state.ResolvedTitle),
		Year:            state.ResolvedYear,
		ExternalID:      state.ExternalID,
		Source:          state.Raw.Source,
	}

	inserted, upsertErr := p.store.UpsertMovie(ctx, rec)
	if upsertErr != nil {
		state.Status = domain.StatusErrored
		state.ErrorDetail = fmt.Sprintf("persist movie: %v", upsertErr)

		return
	}

	switch {
	case state.ExternalID == "" && rec.ExternalID == "":
		state.Status = domain.StatusLookupFail
	case inserted:
		state.Status = domain.StatusStored
	default:
		state.Status = domain.StatusDuplicate
	}

	p.logger.Info().
		Str("title", state.ResolvedTitle).
		Int("year", state.ResolvedYear).
		Str("external_id", rec.ExternalID).
		Str("status", string(state.Status)).
		Msg("trend item persisted")
}
