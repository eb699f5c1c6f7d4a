// Package filters implements the cheap relevance pass over normalized
// trend text. It decides accept/reject where patterns are conclusive
// and defers to the LLM gate otherwise.
package filters

import (
	"regexp"
	"strings"
	"unicode"
)

// Decision is the outcome of the heuristic pass.
type Decision int

const (
	// Undecided means the heuristics were inconclusive; the caller
	// escalates to LLM classification.
	Undecided Decision = iota
	// Reject means the item cannot plausibly refer to a movie.
	Reject
	// Accept means the item matched an entertainment-indicative pattern.
	Accept
)

func (d Decision) String() string {
	switch d {
	case Reject:
		return "reject"
	case Accept:
		return "accept"
	default:
		return "undecided"
	}
}

// entertainmentKeywords are substrings that strongly indicate movie or
// show related content.
var entertainmentKeywords = []string{
	"trailer",
	"movie",
	"film",
	"box office",
	"tv show",
	"series",
	"episode",
	"season",
	"netflix",
	"streaming",
	"premiere",
	"sequel",
	"cast",
	"director",
	"oscars",
	"imdb",
}

var (
	hashtagRegex = regexp.MustCompile(`^#\w+$`)
	numericRegex = regexp.MustCompile(`^[\d\s.,:%$+-]+$`)
	urlOnlyRegex = regexp.MustCompile(`^(?i)https?://\S+$`)
	yearRegex    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Evaluate runs the heuristic pass. Noise patterns are checked against
// the raw text, since normalization strips the leading markers that
// identify bare hashtags and URLs. Positive signals are checked against
// the normalized text and the optional source context. Empty normalized
// text is always a reject.
func Evaluate(raw, normalized, context string) Decision {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return Reject
	}

	if isNoise(strings.TrimSpace(raw)) || isNoise(normalized) {
		return Reject
	}

	if looksLikeEntertainment(normalized) || looksLikeEntertainment(context) {
		return Accept
	}

	return Undecided
}

// isNoise matches patterns that never resolve to a movie: bare
// hashtags, numeric-only trends, symbol runs, lone URLs.
func isNoise(text string) bool {
	if hashtagRegex.MatchString(text) {
		return true
	}

	if numericRegex.MatchString(text) {
		return true
	}

	if urlOnlyRegex.MatchString(text) {
		return true
	}

	return !hasLetter(text)
}

func looksLikeEntertainment(text string) bool {
	if text == "" {
		return false
	}

	lowered := strings.ToLower(text)
	for _, kw := range entertainmentKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}

	if isMultiWordTitleCase(text) {
		return true
	}

	return yearRegex.MatchString(text)
}

// isMultiWordTitleCase reports whether the text looks like a title:
// at least two words, each starting with an uppercase letter.
func isMultiWordTitleCase(text string) bool {
	words := strings.Fields(text)
	if len(words) < 2 {
		return false
	}

	for _, w := range words {
		r := firstLetter(w)
		if r == 0 {
			continue
		}

		if !unicode.IsUpper(r) {
			return false
		}
	}

	return true
}

func firstLetter(word string) rune {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return r
		}
	}

	return 0
}

func hasLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}
