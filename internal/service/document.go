// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
// In a well-structured Go web app, code is organised into three layers:
//
//   Handler (HTTP layer)    → parses requests, writes responses
//   Service (Business layer) → validates, enforces rules, orchestrates
//   Repository (Data layer) → reads/writes to the database
//
// This service sits between the HTTP handlers and TWO storage concerns:
//
//   - repository.UserStore — the authoritative store. What it says, goes.
//   - cache.Store          — an accelerator. What it says is a HINT.
//
// THE CACHE-ASIDE RULE:
// Every cached read follows the same shape: try the cache, on a miss do the
// real work against the store, then write the result back to the cache with a
// TTL. The cache is consulted but never trusted as a source of truth — if you
// deleted every cache call from this file, every method would still return
// exactly the same values, just slower. Tests hold us to that.
//
// CONCURRENT WRITERS:
// The store has no "update one document" primitive, so every mutation here is
// read-modify-replace over the whole list. Two requests mutating the same
// user's list at once would silently drop one write; the store's version
// token turns that into apperror.ErrConflict instead, and mutations re-read
// and retry a bounded number of times before giving up.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/doctalk/internal/apperror"
	"github.com/sakif/doctalk/internal/cache"
	"github.com/sakif/doctalk/internal/model"
	"github.com/sakif/doctalk/internal/repository"
	"github.com/sakif/doctalk/internal/search"
	"github.com/sakif/doctalk/internal/summarizer"
)

// Validation constants.
const (
	MaxTitleLength = 200
	MaxTextLength  = 100000 // ~100KB of text

	// mutationRetries bounds the re-read-and-retry loop on version conflicts.
	// Conflicts need two writers racing on the SAME user, so in practice one
	// retry already wins; three is the backstop.
	mutationRetries = 3
)

// Defaults for the cache TTLs. Entries are allowed to go stale within these
// windows (see DeleteOne), so the TTL doubles as the staleness bound.
const (
	DefaultSearchTTL = time.Hour
	DefaultMetaTTL   = time.Hour
)

// Config carries the tunable knobs. Zero values mean "use the default".
type Config struct {
	SearchTTL time.Duration // lifetime of cached search result lists
	MetaTTL   time.Duration // lifetime of cached document metadata
}

// DocumentMeta is the small, cache-friendly view of a document: everything a
// list row or preview card needs, without the full original text.
type DocumentMeta struct {
	DocID   string          `json:"docId"`
	Title   model.FlexTitle `json:"title"`
	Snippet string          `json:"snippet"`
}

// DocumentService handles business logic for a user's document collection.
type DocumentService struct {
	store      repository.UserStore
	cache      *cache.Store
	summarizer summarizer.Summarizer
	logger     *slog.Logger
	searchTTL  time.Duration
	metaTTL    time.Duration
}

// NewDocumentService creates a DocumentService.
//
// DEPENDENCY INJECTION:
// The service takes interfaces (UserStore, Summarizer), not concrete types.
// Tests pass a mock store and a stub summarizer; main.go passes SQLite and
// the OpenAI client. The service never knows the difference.
func NewDocumentService(
	store repository.UserStore,
	cacheStore *cache.Store,
	sum summarizer.Summarizer,
	logger *slog.Logger,
	cfg Config,
) *DocumentService {
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = DefaultSearchTTL
	}
	if cfg.MetaTTL <= 0 {
		cfg.MetaTTL = DefaultMetaTTL
	}
	return &DocumentService{
		store:      store,
		cache:      cacheStore,
		summarizer: sum,
		logger:     logger,
		searchTTL:  cfg.SearchTTL,
		metaTTL:    cfg.MetaTTL,
	}
}

// Upload summarizes text and appends the resulting document to the user's
// collection.
//
// ORDER OF OPERATIONS:
// Summarize FIRST, append SECOND. Summarization is the step most likely to
// fail (it leaves the process), and a failed upload must leave no trace in
// the store. If summarization fails, the error propagates and nothing was
// written anywhere.
func (s *DocumentService) Upload(ctx context.Context, userID, title, text string) (*model.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "document title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("document title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "document text is required")
	}
	if len(text) > MaxTextLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("document text must be %d characters or less", MaxTextLength))
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		s.logger.Error("summarization failed",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("summarizing document: %w", err)
	}

	doc := &model.Document{
		Title:        model.FlexTitle(title),
		OriginalText: text,
		Summary:      summary,
	}

	if err := s.store.AppendDocument(ctx, userID, doc); err != nil {
		s.logger.Error("failed to append document",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// Warm the metadata cache. Best-effort: the document is already durable,
	// so a cache failure here is logged inside the store wrapper and ignored.
	s.cache.SetJSON(ctx, cache.DocMetaKey(doc.ID), metaFor(doc), s.metaTTL)

	s.logger.Info("document uploaded",
		slog.String("userId", userID),
		slog.String("docId", doc.ID),
	)

	return doc, nil
}

// GetAll returns the user's full document list. The list itself is never
// cached — it is the authoritative record and is read fresh every time — but
// since we just paid for the whole aggregate anyway, the per-document
// metadata entries are refreshed opportunistically on the way out.
func (s *DocumentService) GetAll(ctx context.Context, userID string) ([]model.Document, error) {
	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range u.Documents {
		s.cache.SetJSON(ctx, cache.DocMetaKey(u.Documents[i].ID), metaFor(&u.Documents[i]), s.metaTTL)
	}

	return u.Documents, nil
}

// GetByID returns one document, full text included.
func (s *DocumentService) GetByID(ctx context.Context, userID, docID string) (*model.Document, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, apperror.ValidationFailed("docId", "document ID is required")
	}
	return s.store.GetDocument(ctx, userID, docID)
}

// Details returns the lightweight view of a document, cache-aside over the
// doc:meta key. Upload and RenameTitle keep the entry warm; on a miss (or a
// cache outage) the store answers and the entry is rebuilt.
func (s *DocumentService) Details(ctx context.Context, userID, docID string) (*DocumentMeta, error) {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return nil, apperror.ValidationFailed("docId", "document ID is required")
	}

	key := cache.DocMetaKey(docID)

	var meta DocumentMeta
	if s.cache.GetJSON(ctx, key, &meta) {
		return &meta, nil
	}

	doc, err := s.store.GetDocument(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	meta = metaFor(doc)
	s.cache.SetJSON(ctx, key, meta, s.metaTTL)
	return &meta, nil
}

// RenameTitle changes a document's title.
//
// This is the canonical read-modify-replace: read the list, mutate the one
// entry in place, replace the whole list under the version token. A conflict
// means another writer replaced the list between our read and our write, so
// we re-read (picking up THEIR changes) and reapply ours.
func (s *DocumentService) RenameTitle(ctx context.Context, userID, docID, newTitle string) (*model.Document, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, apperror.ValidationFailed("title", "new title is required")
	}
	if len(newTitle) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("document title must be %d characters or less", MaxTitleLength))
	}

	for attempt := 0; attempt < mutationRetries; attempt++ {
		u, err := s.store.GetAggregate(ctx, userID)
		if err != nil {
			return nil, err
		}

		idx := indexOf(u.Documents, docID)
		if idx < 0 {
			return nil, apperror.NotFound("document", docID)
		}
		u.Documents[idx].Title = model.FlexTitle(newTitle)

		err = s.store.ReplaceDocuments(ctx, userID, u.Documents, u.Version)
		if err != nil {
			if isConflict(err) {
				continue
			}
			return nil, err
		}

		doc := u.Documents[idx]

		// Overwrite the cached metadata so a details read right after the
		// rename sees the new title instead of a stale entry.
		s.cache.SetJSON(ctx, cache.DocMetaKey(docID), metaFor(&doc), s.metaTTL)

		s.logger.Info("document renamed",
			slog.String("userId", userID),
			slog.String("docId", docID),
		)
		return &doc, nil
	}

	return nil, apperror.Conflict("user", userID)
}

// DeleteOne removes a document from the user's list. Deleting a document
// that isn't there is NotFound, not a silent success — the caller asked for a
// specific removal and it did not happen.
//
// STALENESS, ON PURPOSE:
// Cached search results that mention the deleted document are NOT hunted down
// and invalidated. They expire with their TTL, and anyone following a stale
// result to the document itself gets a clean NotFound from the store. The
// cost of enumerating every search term that might reference a document would
// buy nothing but a shorter staleness window.
func (s *DocumentService) DeleteOne(ctx context.Context, userID, docID string) error {
	docID = strings.TrimSpace(docID)
	if docID == "" {
		return apperror.ValidationFailed("docId", "document ID is required")
	}

	for attempt := 0; attempt < mutationRetries; attempt++ {
		u, err := s.store.GetAggregate(ctx, userID)
		if err != nil {
			return err
		}

		idx := indexOf(u.Documents, docID)
		if idx < 0 {
			return apperror.NotFound("document", docID)
		}
		next := append(u.Documents[:idx:idx], u.Documents[idx+1:]...)

		err = s.store.ReplaceDocuments(ctx, userID, next, u.Version)
		if err != nil {
			if isConflict(err) {
				continue
			}
			return err
		}

		// The metadata entry is keyed by the doc id alone, so this one we CAN
		// cheaply drop. Best-effort like every cache call.
		s.cache.Delete(ctx, cache.DocMetaKey(docID))

		s.logger.Info("document deleted",
			slog.String("userId", userID),
			slog.String("docId", docID),
		)
		return nil
	}

	return apperror.Conflict("user", userID)
}

// DeleteAll clears the user's collection. Idempotent: clearing an already
// empty collection succeeds.
func (s *DocumentService) DeleteAll(ctx context.Context, userID string) error {
	for attempt := 0; attempt < mutationRetries; attempt++ {
		u, err := s.store.GetAggregate(ctx, userID)
		if err != nil {
			return err
		}

		if len(u.Documents) == 0 {
			return nil // already empty — nothing to do
		}

		err = s.store.ReplaceDocuments(ctx, userID, []model.Document{}, u.Version)
		if err != nil {
			if isConflict(err) {
				continue
			}
			return err
		}

		s.logger.Info("all documents deleted",
			slog.String("userId", userID),
			slog.Int("count", len(u.Documents)),
		)
		return nil
	}

	return apperror.Conflict("user", userID)
}

// Search finds documents by title, cache-aside.
//
// The cache key folds case and whitespace (see cache.SearchResultsKey), so
// "NOTES" and "notes" share one entry. A hit returns the cached list
// verbatim; a miss scans the store's list, caches the result — an EMPTY
// result list is cached too, it answers the question just as well — and
// returns it.
func (s *DocumentService) Search(ctx context.Context, userID, term string) ([]model.SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, apperror.ValidationFailed("term", "search term is required")
	}

	key := cache.SearchResultsKey(userID, term)

	var cached []model.SearchResult
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := search.Match(u.Documents, term)
	s.cache.SetJSON(ctx, key, results, s.searchTTL)
	return results, nil
}

// DocumentCount reports how many documents the user has.
func (s *DocumentService) DocumentCount(ctx context.Context, userID string) (int, error) {
	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(u.Documents), nil
}

// DaysSinceJoined reports whole days since the account was created.
func (s *DocumentService) DaysSinceJoined(ctx context.Context, userID string) (int, error) {
	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.DaysSinceJoined(time.Now().UTC()), nil
}

// JoinedDate returns the account creation time.
func (s *DocumentService) JoinedDate(ctx context.Context, userID string) (time.Time, error) {
	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return u.CreatedAt, nil
}

// Email returns the account's email address.
func (s *DocumentService) Email(ctx context.Context, userID string) (string, error) {
	u, err := s.store.GetAggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func metaFor(doc *model.Document) DocumentMeta {
	return DocumentMeta{
		DocID:   doc.ID,
		Title:   doc.Title,
		Snippet: search.Snippet(doc.OriginalText),
	}
}

func indexOf(docs []model.Document, docID string) int {
	for i := range docs {
		if docs[i].ID == docID {
			return i
		}
	}
	return -1
}

func isConflict(err error) bool {
	return errors.Is(err, apperror.ErrConflict)
}
