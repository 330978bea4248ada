package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/doctalk/internal/apperror"
	"github.com/sakif/doctalk/internal/auth"
	"github.com/sakif/doctalk/internal/service"
)

// DocumentHandler exposes the document collection over HTTP.
//
// Every route lives under /api/users/{userId}/... and is protected by the
// auth middleware, so by the time a handler runs there are TWO user ids in
// play: the one in the URL and the one proven by the token. ownerID checks
// they match — users read and write their own collection, nobody else's.
type DocumentHandler struct {
	docs     *service.DocumentService
	accounts *service.AccountService
	logger   *slog.Logger
}

// NewDocumentHandler creates a DocumentHandler.
func NewDocumentHandler(docs *service.DocumentService, accounts *service.AccountService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, accounts: accounts, logger: logger}
}

// ownerID resolves the {userId} path parameter and enforces the owner check.
// A mismatch is 403, not 404: the resource may well exist, the caller just
// doesn't get to know.
func (h *DocumentHandler) ownerID(r *http.Request) (string, error) {
	pathID := r.PathValue("userId")
	if pathID == "" {
		return "", apperror.ValidationFailed("userId", "user ID is required")
	}

	subject, ok := auth.UserIDFromContext(r.Context())
	if !ok || subject != pathID {
		return "", apperror.Forbidden("you can only access your own documents")
	}

	return pathID, nil
}

// uploadRequest is the JSON body for document uploads.
type uploadRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// HandleUpload summarizes and stores a new document.
//
// HTTP: POST /api/users/{userId}/documents
// REQUEST BODY: {"title": "Meeting notes", "text": "full document text..."}
// RESPONSE: 201 with the stored document, summary and generated id included.
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	doc, err := h.docs.Upload(r.Context(), userID, req.Title, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// HandleList returns the user's full document list.
//
// HTTP: GET /api/users/{userId}/documents
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	docs, err := h.docs.GetAll(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

// HandleGet returns one document, full text included.
//
// HTTP: GET /api/users/{userId}/documents/{docId}
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.docs.GetByID(r.Context(), userID, r.PathValue("docId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// HandleDetails returns the lightweight metadata view of a document.
//
// HTTP: GET /api/users/{userId}/documents/{docId}/details
func (h *DocumentHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	meta, err := h.docs.Details(r.Context(), userID, r.PathValue("docId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// HandleSearch finds documents by title.
//
// HTTP: GET /api/users/{userId}/documents/search?term=meeting
// RESPONSE: a list of {docId, title, snippet} — empty list when nothing
// matches, never an error.
func (h *DocumentHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := h.docs.Search(r.Context(), userID, r.URL.Query().Get("term"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// renameRequest is the JSON body for title changes.
type renameRequest struct {
	Title string `json:"title"`
}

// HandleRename changes a document's title.
//
// HTTP: PATCH /api/users/{userId}/documents/{docId}/title
// REQUEST BODY: {"title": "New title"}
// RESPONSE: 200 with the updated document. 409 if the request keeps losing
// the race against concurrent writes — the client retries with fresh state.
func (h *DocumentHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	doc, err := h.docs.RenameTitle(r.Context(), userID, r.PathValue("docId"), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// HandleDelete removes one document.
//
// HTTP: DELETE /api/users/{userId}/documents/{docId}
// RESPONSE: 204 on success, 404 if the document was already gone.
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.docs.DeleteOne(r.Context(), userID, r.PathValue("docId")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteAll clears the whole collection.
//
// HTTP: DELETE /api/users/{userId}/documents
// RESPONSE: 204, also when the collection was already empty.
func (h *DocumentHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.docs.DeleteAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCount reports the collection size.
//
// HTTP: GET /api/users/{userId}/documents/count
// RESPONSE: {"count": 3}
func (h *DocumentHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := h.docs.DocumentCount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleEmail returns the account's email address.
//
// HTTP: GET /api/users/{userId}/email
// RESPONSE: {"email": "user@example.com"}
func (h *DocumentHandler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	email, err := h.docs.Email(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

// HandleJoinedDate returns when the account was created.
//
// HTTP: GET /api/users/{userId}/joined-date
// RESPONSE: {"joinedDate": "2025-01-15T10:30:00Z"}
func (h *DocumentHandler) HandleJoinedDate(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	date, err := h.docs.JoinedDate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"joinedDate": date})
}

// HandleDaysSinceJoined reports whole days since account creation.
//
// HTTP: GET /api/users/{userId}/days-since-joined
// RESPONSE: {"daysSinceJoined": 42}
func (h *DocumentHandler) HandleDaysSinceJoined(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	days, err := h.docs.DaysSinceJoined(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"daysSinceJoined": days})
}

// provisionRequest is the JSON body for account provisioning.
type provisionRequest struct {
	Email string `json:"email"`
}

// HandleProvision ensures the authenticated user has an aggregate record.
// Called by the frontend right after a first sign-in; safe to repeat.
//
// HTTP: POST /api/users/{userId}
// REQUEST BODY: {"email": "user@example.com"}
func (h *DocumentHandler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	userID, err := h.ownerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	u, err := h.accounts.Provision(r.Context(), userID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}
