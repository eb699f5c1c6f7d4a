package domain

import "time"

// RawTrendItem represents a raw trending signal from one source platform.
// It is immutable once created and never persisted directly.
type RawTrendItem struct {
	ID      string
	Text    string
	Context string
	Link    string
	Source  string
}

// Trend source identifiers.
const (
	SourceGoogleTrends = "google_trends"
	SourceTMDBMovie    = "tmdb_movie"
	SourceTMDBTV       = "tmdb_tv"
	SourceReddit       = "reddit"
	SourceTwitter      = "twitter"
	SourceFallback     = "fallback"
)

// Candidacy is the relevance filter's answer for one item.
type Candidacy int

const (
	CandidateUndecided Candidacy = iota
	CandidateNo
	CandidateYes
)

// Status is the pipeline state for one trend item.
type Status string

// Pipeline statuses. FilteredOut, LookupFailed, Stored, Duplicate and
// Errored are terminal.
const (
	StatusPending     Status = "PENDING"
	StatusFilteredOut Status = "FILTERED_OUT"
	StatusResolved    Status = "RESOLVED"
	StatusLookupFail  Status = "LOOKUP_FAILED"
	StatusDuplicate   Status = "DUPLICATE"
	StatusStored      Status = "STORED"
	StatusErrored     Status = "ERROR"
)

// Terminal reports whether no further transition occurs for this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilteredOut, StatusLookupFail, StatusDuplicate, StatusStored, StatusErrored:
		return true
	default:
		return false
	}
}

// TrendState is the mutable record threaded through the pipeline for one
// item. It is owned by exactly one item's run and discarded once a
// terminal status is reached.
type TrendState struct {
	Raw            RawTrendItem
	NormalizedText string
	Candidate      Candidacy
	ResolvedTitle  string
	ResolvedYear   int
	ExternalID     string
	Status         Status
	ErrorDetail    string
}

// MovieRecord is the persisted, deduplicated movie row. The pair
// (NormalizedTitle, Year) is unique. Year 0 means unknown and is stored
// as 0 so year-less records still fall under the uniqueness constraint;
// ExternalID "" means unknown and is stored as NULL.
type MovieRecord struct {
	ID              int64
	Title           string
	NormalizedTitle string
	Year            int
	ExternalID      string
	Source          string
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
}
