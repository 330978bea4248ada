package cache

import "strings"

// Cache key construction lives in one place so key formats never drift apart
// across the codebase. Every function here is pure: the same logical target
// always produces the same key, and distinct targets never collide (each
// namespace has its own prefix, and the owner id is always part of the key).

// SearchResultsKey returns the key under which one user's results for one
// search term are cached.
//
// The term is part of the key, so it must be NORMALIZED — otherwise "Note"
// and "note" would occupy two entries for the same logical query. We trim
// surrounding whitespace and case-fold, which matches the case-insensitive
// matching rule in the search package.
func SearchResultsKey(userID, term string) string {
	return "query:results:" + userID + ":search:" + strings.ToLower(strings.TrimSpace(term))
}

// DocMetaKey returns the key for a single document's metadata entry.
// Document ids are unique per aggregate and generated from a 96-bit id space,
// so the doc id alone is enough to avoid collisions.
func DocMetaKey(docID string) string {
	return "doc:meta:" + docID
}

// SessionKey returns the key for a user's session entry.
func SessionKey(userID string) string {
	return "session:" + userID
}
