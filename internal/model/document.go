// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Document is one entry in a user's document list.
//
// Documents are never stored on their own — they live embedded inside the
// owning User aggregate (see user.go) and are only reachable through it.
// The `json:"..."` tags match the wire shape the frontend already speaks:
//
//	{"id":"...","title":"...","originalText":"...","summary":"..."}
//
// IMMUTABILITY:
// ID is assigned once by the store and never changes. OriginalText and
// Summary are written at creation time and have no update path — the only
// mutable field is Title (via the rename operation).
type Document struct {
	ID           string    `json:"id"`
	Title        FlexTitle `json:"title"`
	OriginalText string    `json:"originalText"`
	Summary      string    `json:"summary"`
}

// SearchResult is one entry in a search response.
//
// Snippet is a preview of the document body: the first 150 characters of
// OriginalText with an ellipsis appended (see the search package).
type SearchResult struct {
	DocID   string    `json:"docId"`
	Title   FlexTitle `json:"title"`
	Snippet string    `json:"snippet"`
}
