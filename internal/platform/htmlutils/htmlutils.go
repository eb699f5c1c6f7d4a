// Package htmlutils provides HTML cleanup helpers for text scraped from
// trend feeds and web pages.
//
// Scraped trend strings routinely carry residual markup: tags left over
// from feed bodies, doubly-encoded entities, comments. StripMarkup
// reduces such input to plain text; it never fails.
package htmlutils

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRegex     = regexp.MustCompile(`<[^>]*>`)
	commentRegex = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptRegex  = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
)

// StripMarkup removes HTML tags, comments and script/style blocks and
// decodes entities, leaving plain text. Entity decoding runs twice
// because feed aggregators frequently double-encode (&amp;amp;).
func StripMarkup(text string) string {
	if text == "" {
		return ""
	}

	text = scriptRegex.ReplaceAllString(text, " ")
	text = commentRegex.ReplaceAllString(text, " ")
	text = tagRegex.ReplaceAllString(text, " ")
	text = html.UnescapeString(html.UnescapeString(text))

	return strings.TrimSpace(text)
}

// HasMarkup reports whether the text still contains tag-like sequences.
func HasMarkup(text string) bool {
	return tagRegex.MatchString(text)
}
