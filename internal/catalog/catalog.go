// Package catalog provides the external movie-catalog lookup capability
// backed by OMDb. Lookups translate a resolved title (plus optional
// year hint) into a stable external identifier.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Match captures the catalog answer for a successful lookup.
type Match struct {
	ExternalID string
	Title      string
	Year       int
}

// Searcher is the lookup capability consumed by the pipeline.
type Searcher interface {
	Lookup(ctx context.Context, title string, year int) (*Match, error)
}

// ErrNotFound is terminal for the attempt: the catalog has no entry for
// the title. It is never retried.
var ErrNotFound = errors.New("catalog: title not found")

// ErrTransient marks failures worth retrying: timeouts, 5xx responses,
// rate limiting.
var ErrTransient = errors.New("catalog: transient failure")

// RetryAfterError is a transient failure carrying the provider's
// requested backoff (HTTP 429 Retry-After).
type RetryAfterError struct {
	Delay time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("catalog: rate limited, retry after %s", e.Delay)
}

func (e *RetryAfterError) Unwrap() error {
	return ErrTransient
}
