// Package llm defines the LLM capability consumed by the resolution
// pipeline: entertainment classification and canonical title
// extraction. Responses are parsed defensively at this boundary so
// internal stages never handle raw unstructured text.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Verdict is the constrained classification answer. Anything the
// provider returns outside this set is treated as unparseable.
type Verdict string

const (
	VerdictMovie            Verdict = "movie"
	VerdictTV               Verdict = "tv"
	VerdictNotEntertainment Verdict = "not_entertainment"
)

// IsCandidate reports whether the verdict marks the item as a movie
// candidate worth resolving.
func (v Verdict) IsCandidate() bool {
	return v == VerdictMovie || v == VerdictTV
}

// Resolution is the validated shape of a title-extraction response.
// Year is 0 when the provider gave none.
type Resolution struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
}

// ErrUnparseableResponse indicates the provider answered but the
// response did not match the expected constrained shape. The raw
// response is carried in the wrapping error message for diagnosis.
var ErrUnparseableResponse = errors.New("unparseable llm response")

// Client is the LLM capability interface. Both calls are bounded by the
// caller's context; transport failures surface as ordinary errors.
type Client interface {
	Classify(ctx context.Context, text, context_ string) (Verdict, error)
	ResolveTitle(ctx context.Context, text, context_ string) (Resolution, error)
}

func parseVerdict(raw string) (Verdict, bool) {
	token := Verdict(strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'.`)))
	switch token {
	case VerdictMovie, VerdictTV, VerdictNotEntertainment:
		return token, true
	default:
		return "", false
	}
}

// extractJSON tries to extract a JSON object from a response that might
// have extra text around it.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// validYear bounds the release-year hint; film history starts in 1888.
func validYear(year int) bool {
	return year >= 1888 && year <= 2100
}
