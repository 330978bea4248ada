package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/doctalk/internal/auth"
	"github.com/sakif/doctalk/internal/cache"
	"github.com/sakif/doctalk/internal/cache/memory"
	"github.com/sakif/doctalk/internal/model"
	"github.com/sakif/doctalk/internal/repository/sqlite"
	"github.com/sakif/doctalk/internal/server"
	"github.com/sakif/doctalk/internal/service"
	"github.com/sakif/doctalk/internal/summarizer"
)

// testAPI is the full stack minus the network: real router, real middleware,
// real SQLite store, in-memory cache, stubbed summarizer.
type testAPI struct {
	router http.Handler
	tokens *auth.TokenService
	store  *sqlite.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	cacheStore := cache.New(memory.New(0), 0, logger)

	docs := service.NewDocumentService(db, cacheStore, stubSummarizer(), logger, service.Config{})
	accounts := service.NewAccountService(db, logger)

	router := server.NewRouter(server.Deps{
		Documents: docs,
		Accounts:  accounts,
		Tokens:    tokens,
		Sessions:  cacheStore,
	}, logger)

	return &testAPI{router: router, tokens: tokens, store: db}
}

func stubSummarizer() summarizer.Summarizer {
	return summarizer.Func(func(_ context.Context, text string) (string, error) {
		return "summary of: " + text, nil
	})
}

// do runs a request through the router with a valid token for userID.
func (a *testAPI) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := a.tokens.Generate(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) provision(t *testing.T, userID, email string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users/"+userID, userID, map[string]string{"email": email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testAPI) upload(t *testing.T, userID, title, text string) model.Document {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users/"+userID+"/documents", userID,
		map[string]string{"title": title, "text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc model.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	return doc
}

func TestDocumentAPI_UploadAndList(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "u1@example.com")

	doc := api.upload(t, "u1", "Meeting Notes", "The full meeting transcript.")
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "summary of: The full meeting transcript.", doc.Summary)

	rec := api.do(t, http.MethodGet, "/api/users/u1/documents", "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var docs []model.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&docs))
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func TestDocumentAPI_OwnerCheck(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")

	// A valid token for u2 must not open u1's collection.
	api.provision(t, "u2", "")
	rec := api.do(t, http.MethodGet, "/api/users/u1/documents", "u2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// And no token at all is a 401 from the middleware.
	rec = api.do(t, http.MethodGet, "/api/users/u1/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDocumentAPI_GetAndDetails(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")
	doc := api.upload(t, "u1", "Title", "Body text of the document.")

	rec := api.do(t, http.MethodGet, "/api/users/u1/documents/"+doc.ID, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Body text of the document.", got.OriginalText)

	rec = api.do(t, http.MethodGet, "/api/users/u1/documents/"+doc.ID+"/details", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var meta service.DocumentMeta
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&meta))
	assert.Equal(t, doc.ID, meta.DocID)
	assert.Equal(t, "Body text of the document....", meta.Snippet)

	rec = api.do(t, http.MethodGet, "/api/users/u1/documents/no-such-id", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentAPI_Search(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")
	api.upload(t, "u1", "Quarterly Report", "numbers")
	api.upload(t, "u1", "Shopping List", "milk")

	rec := api.do(t, http.MethodGet, "/api/users/u1/documents/search?term=report", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []model.SearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "Quarterly Report", results[0].Title.String())

	// No matches is still a 200 with an empty list.
	rec = api.do(t, http.MethodGet, "/api/users/u1/documents/search?term=zzz", "u1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// A blank term is a validation error.
	rec = api.do(t, http.MethodGet, "/api/users/u1/documents/search?term=", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentAPI_RenameAndDelete(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")
	doc := api.upload(t, "u1", "Old Title", "text")

	rec := api.do(t, http.MethodPatch, "/api/users/u1/documents/"+doc.ID+"/title", "u1",
		map[string]string{"title": "New Title"})
	require.Equal(t, http.StatusOK, rec.Code)

	var renamed model.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&renamed))
	assert.Equal(t, "New Title", renamed.Title.String())

	rec = api.do(t, http.MethodDelete, "/api/users/u1/documents/"+doc.ID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Deleting again: the document is gone.
	rec = api.do(t, http.MethodDelete, "/api/users/u1/documents/"+doc.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentAPI_DeleteAllAndCount(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")
	api.upload(t, "u1", "a", "text")
	api.upload(t, "u1", "b", "text")

	rec := api.do(t, http.MethodGet, "/api/users/u1/documents/count", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = api.do(t, http.MethodDelete, "/api/users/u1/documents", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Idempotent: clearing again still succeeds.
	rec = api.do(t, http.MethodDelete, "/api/users/u1/documents", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/users/u1/documents/count", "u1", nil)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestDocumentAPI_ProfileEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "u1@example.com")

	rec := api.do(t, http.MethodGet, "/api/users/u1/email", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"u1@example.com"}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/users/u1/days-since-joined", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"daysSinceJoined":0}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/users/u1/joined-date", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body["joinedDate"])
}

func TestDocumentAPI_InvalidBodyIs400(t *testing.T) {
	api := newTestAPI(t)
	api.provision(t, "u1", "")

	token, _ := api.tokens.Generate("u1")
	req := httptest.NewRequest(http.MethodPost, "/api/users/u1/documents",
		bytes.NewBufferString(`{"title": `))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
