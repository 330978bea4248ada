// Package search implements the in-memory document search.
//
// There is no search index. A user's whole document list is small enough to
// scan on every query, so search is a pure function over the list the caller
// already holds: no state, no goroutines, no error cases. What DOES get
// reused across queries is the result list itself — the service layer caches
// the output of Match keyed by (user, normalized term).
package search

import (
	"strings"

	"github.com/sakif/doctalk/internal/model"
)

// snippetLen is how much of the original text a search result carries.
// Results are previews; the full text comes from the document endpoint.
const snippetLen = 150

// Match returns the documents whose title contains term, case-insensitively.
// The result order is the list order — documents keep their upload ordering,
// so results do too. Only the title is searched; body text never matches.
func Match(docs []model.Document, term string) []model.SearchResult {
	needle := strings.ToLower(strings.TrimSpace(term))

	results := []model.SearchResult{}
	for i := range docs {
		title := docs[i].Title.String()
		if !strings.Contains(strings.ToLower(title), needle) {
			continue
		}
		results = append(results, model.SearchResult{
			DocID:   docs[i].ID,
			Title:   docs[i].Title,
			Snippet: Snippet(docs[i].OriginalText),
		})
	}
	return results
}

// Snippet truncates text to the preview length and appends an ellipsis.
// The ellipsis is appended even when nothing was cut — clients render the
// snippet as-is and rely on the trailing "..." as a "there may be more" cue.
// Truncation counts runes, not bytes, so multi-byte characters never get
// split down the middle.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) > snippetLen {
		runes = runes[:snippetLen]
	}
	return string(runes) + "..."
}
