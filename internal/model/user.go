// Package model defines the data structures used throughout the application.
package model

import "time"

// User is the aggregate record: one row per registered user, holding the
// user's entire document list embedded inside it.
//
// WHY EMBED THE LIST INSTEAD OF A documents TABLE?
// The store exposes get/set-whole-record semantics on the aggregate — every
// mutation (add, rename, delete, delete-all) is a read-modify-write of the
// full list. That keeps reads to a single lookup, but it makes concurrent
// writers for the SAME user race against each other. Version is the
// optimistic-concurrency token that makes those races detectable: the store
// only applies a whole-list replace if the caller's Version still matches,
// and bumps it on every successful write.
//
// Version is internal bookkeeping — it never crosses the API boundary, hence
// the `json:"-"` tag.
//
// Theme and SocialMedia are profile fields owned by out-of-scope endpoints.
// They live on the aggregate so document mutations round-trip them untouched,
// but nothing in this service validates or updates them.
type User struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Documents   []Document  `json:"documents"`
	CreatedAt   time.Time   `json:"createdAt"`
	Theme       string      `json:"theme,omitempty"`
	SocialMedia SocialMedia `json:"socialMedia"`
	Version     int64       `json:"-"`
}

// SocialMedia holds a user's public profile links. Mutated only by the
// profile endpoints, which are not part of this service.
type SocialMedia struct {
	GitHub    string `json:"github,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// DaysSinceJoined reports how many whole days have passed since the account
// was created, measured against the given "now".
func (u *User) DaysSinceJoined(now time.Time) int {
	return int(now.Sub(u.CreatedAt).Hours() / 24)
}
