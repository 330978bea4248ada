package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/doctalk/internal/apperror"
	"github.com/sakif/doctalk/internal/model"
	"github.com/sakif/doctalk/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` verifies at compile time that *DB implements
// repository.UserStore. If a method is missing or has the wrong signature,
// the compiler errors here instead of at some distant call site.
var _ repository.UserStore = (*DB)(nil)

// appendRetries bounds the internal CAS loop in AppendDocument. Conflicts
// only happen when two writers hit the SAME user at the same instant, so a
// handful of retries is plenty.
const appendRetries = 3

// CreateUser inserts the aggregate row with an empty document list.
// The id comes from the external identity provider (or the seed tool);
// inserting an id that already exists is a conflict, not an upsert.
func (db *DB) CreateUser(ctx context.Context, id, email string) (*model.User, error) {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, documents, version, created_at)
		 VALUES (?, ?, '[]', 0, ?)`,
		id, email, now,
	)
	if err != nil {
		// modernc.org/sqlite doesn't export a typed constraint error, so the
		// UNIQUE/PRIMARY KEY violation is detected from the message.
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return nil, apperror.Conflict("user", id)
		}
		return nil, apperror.Unavailable(fmt.Sprintf("sqlite: creating user %s", id), err)
	}

	return &model.User{
		ID:        id,
		Email:     email,
		Documents: []model.Document{},
		CreatedAt: now,
	}, nil
}

// GetAggregate returns the whole record: profile fields, the full document
// list, and the version token needed for a subsequent ReplaceDocuments.
func (db *DB) GetAggregate(ctx context.Context, userID string) (*model.User, error) {
	var (
		u        model.User
		docsJSON string
		smJSON   string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, documents, version, theme, social_media, created_at
		 FROM users WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.Email, &docsJSON, &u.Version, &u.Theme, &smJSON, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, apperror.Unavailable(fmt.Sprintf("sqlite: getting user %s", userID), err)
	}

	// The document column is JSON. Legacy array-typed titles are absorbed
	// here by model.FlexTitle — by the time a Document exists in memory, its
	// title is a plain string.
	if err := json.Unmarshal([]byte(docsJSON), &u.Documents); err != nil {
		return nil, fmt.Errorf("sqlite: decoding document list for user %s: %w", userID, err)
	}
	if u.Documents == nil {
		u.Documents = []model.Document{}
	}
	if smJSON != "" {
		if err := json.Unmarshal([]byte(smJSON), &u.SocialMedia); err != nil {
			return nil, fmt.Errorf("sqlite: decoding social media for user %s: %w", userID, err)
		}
	}

	return &u, nil
}

// AppendDocument adds doc to the owner's list.
//
// ID GENERATION:
// xid produces 20-char, URL-safe, creation-time-sortable ids from a 96-bit
// space, so two generated ids virtually never collide. Uniqueness only has
// to hold WITHIN one aggregate, and we still verify that cheaply against the
// list we just read — a collision regenerates rather than corrupts.
//
// ATOMICITY:
// The append itself is a read-modify-replace like every other mutation, so
// it uses the same version token. If another writer replaces the list
// between our read and our write, the CAS fails and we re-read and retry.
func (db *DB) AppendDocument(ctx context.Context, userID string, doc *model.Document) error {
	for attempt := 0; attempt < appendRetries; attempt++ {
		u, err := db.GetAggregate(ctx, userID)
		if err != nil {
			return err
		}

		doc.ID = xid.New().String()
		for containsDocID(u.Documents, doc.ID) {
			doc.ID = xid.New().String()
		}

		next := append(u.Documents, *doc)

		err = db.ReplaceDocuments(ctx, userID, next, u.Version)
		if errors.Is(err, apperror.ErrConflict) {
			continue // someone else wrote first — re-read and try again
		}
		return err
	}

	return apperror.Conflict("user", userID)
}

// ReplaceDocuments overwrites the whole list, but only if the stored version
// still matches the one the caller read.
//
// THE COMPARE-AND-SWAP:
//
//	UPDATE users SET documents = ?, version = version + 1
//	WHERE id = ? AND version = ?
//
// If zero rows were affected, either the user does not exist (NotFound) or
// another writer bumped the version since our read (Conflict). One extra
// SELECT disambiguates the two.
func (db *DB) ReplaceDocuments(ctx context.Context, userID string, docs []model.Document, version int64) error {
	if docs == nil {
		docs = []model.Document{} // store '[]', never 'null'
	}

	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("sqlite: encoding document list for user %s: %w", userID, err)
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET documents = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(raw), userID, version,
	)
	if err != nil {
		return apperror.Unavailable(fmt.Sprintf("sqlite: replacing documents for user %s", userID), err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var one int
		err := db.conn.QueryRowContext(ctx,
			`SELECT 1 FROM users WHERE id = ?`, userID,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("user", userID)
		}
		if err != nil {
			return apperror.Unavailable(fmt.Sprintf("sqlite: checking user %s", userID), err)
		}
		return apperror.Conflict("user", userID)
	}

	return nil
}

// GetDocument scans the owner's list for the given document id.
// There is no per-document index — the aggregate is the unit of storage, so
// a document lookup is a whole-record read plus a linear scan.
func (db *DB) GetDocument(ctx context.Context, userID, docID string) (*model.Document, error) {
	u, err := db.GetAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range u.Documents {
		if u.Documents[i].ID == docID {
			doc := u.Documents[i]
			return &doc, nil
		}
	}

	return nil, apperror.NotFound("document", docID)
}

func containsDocID(docs []model.Document, id string) bool {
	for i := range docs {
		if docs[i].ID == id {
			return true
		}
	}
	return false
}
