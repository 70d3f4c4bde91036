// Package query holds the read-side helpers shared by every record view:
// recency ordering, text search and previews. All functions are pure; they
// never modify their input and return new slices.
package query

import (
	"slices"
	"strings"
	"time"

	"notedash/internal/services/records"
	"notedash/internal/utils/sanitize"
)

// PreviewLength is the number of characters shown in a list preview
const PreviewLength = 40

// DateFunc returns the date a record is ordered by
type DateFunc[T any] func(*T) time.Time

// TextFunc returns the title and the markup content a record is searched by
type TextFunc[T any] func(*T) (title, content string)

// NoteDate orders notes by their last save, falling back to creation
func NoteDate(n *records.Note) time.Time { return n.EffectiveDate() }

// PostDate orders posts by publication date
func PostDate(p *records.Post) time.Time { return p.Date }

// TravelDate orders travel entries by visit date
func TravelDate(e *records.TravelEntry) time.Time { return e.Date }

// NoteText searches a note by title and content
func NoteText(n *records.Note) (string, string) { return n.Title, n.Content }

// PostText searches a post by title and content
func PostText(p *records.Post) (string, string) { return p.Title, p.Content }

// TravelText searches a travel entry by name and notes
func TravelText(e *records.TravelEntry) (string, string) { return e.Name, e.Notes }

// SortByRecency returns the records newest first. Records with the same date
// keep their input order.
func SortByRecency[T any](recs []*T, dateOf DateFunc[T]) []*T {
	out := slices.Clone(recs)
	slices.SortStableFunc(out, func(a, b *T) int {
		return dateOf(b).Compare(dateOf(a))
	})
	return out
}

// Recent returns at most n records, newest first. n larger than the input
// returns everything; n <= 0 returns an empty slice.
func Recent[T any](recs []*T, dateOf DateFunc[T], n int) []*T {
	if n <= 0 {
		return []*T{}
	}
	sorted := SortByRecency(recs, dateOf)
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// FilterByText keeps the records whose title or visible content contains q,
// ignoring case. Order is preserved. A blank query returns every record;
// otherwise surrounding spaces are part of the match.
func FilterByText[T any](recs []*T, q string, textOf TextFunc[T]) []*T {
	if strings.TrimSpace(q) == "" {
		return slices.Clone(recs)
	}
	needle := strings.ToLower(q)

	out := make([]*T, 0, len(recs))
	for _, r := range recs {
		title, content := textOf(r)
		if strings.Contains(strings.ToLower(title), needle) ||
			strings.Contains(strings.ToLower(sanitize.Text(content)), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Featured returns the most recent post, or nil when there are none
func Featured(posts []*records.Post) *records.Post {
	if len(posts) == 0 {
		return nil
	}
	return SortByRecency(posts, PostDate)[0]
}

// Preview is the short plain-text summary shown under a title in lists
func Preview(content string) string {
	return sanitize.Preview(content, PreviewLength)
}
