package repository

import (
	"context"

	"github.com/sakif/doctalk/internal/model"
)

// UserStore is the authoritative store: one aggregate record per user, each
// embedding the user's full document list.
//
// The contract is deliberately coarse-grained — get the whole aggregate,
// replace the whole list. There is no "update one document" primitive, so
// every mutation is read-modify-write and must be guarded against concurrent
// writers for the same user. ReplaceDocuments takes the Version read from the
// aggregate and fails with apperror.ErrConflict if another writer got there
// first; callers re-read and retry a bounded number of times.
//
// Error contract:
//   - apperror.ErrNotFound     — user (or document, for GetDocument) absent
//   - apperror.ErrConflict     — version mismatch on ReplaceDocuments
//   - apperror.ErrUnavailable  — the store itself failed
type UserStore interface {
	// CreateUser creates the aggregate with an empty document list.
	// Registration itself happens in an external identity provider; this is
	// only the side effect that gives the new user a place to put documents.
	CreateUser(ctx context.Context, id, email string) (*model.User, error)

	// GetAggregate returns the whole record, including Version.
	GetAggregate(ctx context.Context, userID string) (*model.User, error)

	// AppendDocument atomically adds doc to the owner's list, generating a
	// fresh id first. The generated id is written back into doc.
	AppendDocument(ctx context.Context, userID string, doc *model.Document) error

	// ReplaceDocuments overwrites the whole list if and only if the stored
	// version still equals version.
	ReplaceDocuments(ctx context.Context, userID string, docs []model.Document, version int64) error

	// GetDocument scans the owner's list for the given document id.
	GetDocument(ctx context.Context, userID, docID string) (*model.Document, error)
}
