package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Both policies are built once and only read afterwards, which keeps them
// safe for concurrent use. Never call mutating helpers (AddAttr,
// AllowElements, ...) on them after initialization.
var (
	// flat strips tags without inserting anything, matching what a browser
	// reports as an element's textContent.
	flat = bluemonday.StrictPolicy()

	// spaced inserts a space wherever a tag is removed so adjacent blocks do
	// not run into each other in human-facing previews.
	spaced = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

// Text returns the visible text of a markup fragment.
//
// Tags are removed, script and style bodies dropped and entities decoded.
// Malformed markup never fails; the tokenizer recovers and whatever text it
// can see is returned.
//
// Examples:
//   - "<p>Hello <b>world</b></p>" -> "Hello world"
//   - "<b>a</b><i>b</i>" -> "ab"
//   - "fish &amp; chips" -> "fish & chips"
func Text(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(flat.Sanitize(s))
}

// Clean strips all markup and normalizes whitespace for display.
//
// It performs the following steps:
//  1. Strips all HTML tags while preserving spacing
//  2. Trims leading/trailing whitespace
//  3. Unescapes HTML entities for clean plaintext
//  4. Collapses multiple consecutive spaces to single space
//  5. Normalizes non-breaking spaces to regular spaces
//
// Examples:
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b> <b>b</b>" -> "a b"
//   - "  <p>Hello</p>  " -> "Hello"
func Clean(s string) string {
	sanitized := spaced.Sanitize(s)
	sanitized = strings.TrimSpace(sanitized)

	// Unescape HTML entities first to handle &#13; etc. as single chars
	sanitized = html.UnescapeString(sanitized)

	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")

	// Collapse multiple spaces efficiently while preserving newlines
	lines := strings.Split(sanitized, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	sanitized = strings.Join(lines, "\n")

	return sanitized
}

// Preview returns at most limit runes of the cleaned text, followed by
// Ellipsis when something was cut off. Newlines are folded into spaces.
func Preview(s string, limit int) string {
	text := strings.Join(strings.Fields(Clean(s)), " ")
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + Ellipsis
}
