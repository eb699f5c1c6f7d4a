// Package normalize turns raw, noisy trend strings into clean display
// text and stable comparison keys.
//
// Normalize is pure and total: it never fails, and the worst case is an
// empty string, which downstream filtering treats as an automatic
// reject.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/trendscout/trendscout/internal/platform/htmlutils"
)

// DefaultMaxLen bounds normalized text so oversized scraped blobs never
// reach the LLM.
const DefaultMaxLen = 256

var keyFolder = cases.Fold()

// Normalizer cleans raw trend text for display and downstream stages.
type Normalizer struct {
	maxLen int
}

func New(maxLen int) *Normalizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	return &Normalizer{maxLen: maxLen}
}

// Normalize strips markup, trims surrounding punctuation and quotes,
// collapses internal whitespace, and truncates to the configured bound.
// The display casing of the input is preserved.
func (n *Normalizer) Normalize(text string) string {
	text = htmlutils.StripMarkup(text)
	text = strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	text = collapseWhitespace(text)

	return truncateRunes(text, n.maxLen)
}

// Key returns the comparison key for a title: NFC-normalized,
// case-folded, whitespace-collapsed. Records with equal keys refer to
// the same movie for dedup purposes.
func Key(title string) string {
	title = norm.NFC.String(strings.TrimSpace(title))
	title = collapseWhitespace(title)

	return keyFolder.String(title)
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	return strings.TrimSpace(string(runes[:maxLen]))
}
