package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/trendscout/trendscout/internal/core/domain"
)

// ItemError records one item that ended in ERROR status.
type ItemError struct {
	Text   string
	Source string
	Detail string
}

// Summary is the outcome of one batch run.
type Summary struct {
	Total  int
	Counts map[domain.Status]int
	Errors []ItemError
}

// HasErrors reports whether any item ended in ERROR status.
func (s Summary) HasErrors() bool {
	return s.Counts[domain.StatusErrored] > 0
}

// Stored returns the number of new records written this run.
func (s Summary) Stored() int {
	return s.Counts[domain.StatusStored]
}

func (s Summary) log(logger *zerolog.Logger) {
	level := zerolog.InfoLevel
	if s.HasErrors() {
		level = zerolog.WarnLevel
	}

	logger.WithLevel(level).
		Int("total", s.Total).
		Int("filtered_out", s.Counts[domain.StatusFilteredOut]).
		Int("stored", s.Counts[domain.StatusStored]).
		Int("duplicates", s.Counts[domain.StatusDuplicate]).
		Int("lookup_failed", s.Counts[domain.StatusLookupFail]).
		Int("errors", s.Counts[domain.StatusErrored]).
		Msg("batch complete")

	for _, itemErr := range s.Errors {
		logger.Error().
			Str("text", itemErr.Text).
			Str("source", itemErr.Source).
			Str("detail", itemErr.Detail).
			Msg("trend item failed")
	}
}
