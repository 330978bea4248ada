package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/doctalk/internal/cache"
)

// errNoToken marks a request with no usable Authorization header.
var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "userID", id), ANY package that knows the string
// "userID" can read or shadow your value. A package-private type prevents
// collisions: only this package can create a contextKey, so only this
// package can read or write userID values in the context.
type contextKey string

const userIDKey contextKey = "userID"

// SessionTTL is how long a refreshed session entry lives in the cache.
const SessionTTL = time.Hour

// session is the small record the middleware keeps warm in the cache. It
// exists for observability (who was active, when) — nothing reads it on the
// request path, and authentication never depends on it.
type session struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the Authorization header ("Bearer <token>"),
// validates it, and stores the userID in the request context. If the token
// is missing or invalid, it returns 401 Unauthorized and stops the chain.
//
// On every authenticated request it also refreshes the user's session entry
// in the cache. Best-effort: the cache wrapper absorbs failures, and a
// request is never rejected because the cache is down — the token alone
// decides.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original. Chi applies them in a
// chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService, sessions *cache.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			sessions.SetJSON(r.Context(), cache.SessionKey(userID), session{
				UserID:   userID,
				LastSeen: time.Now().UTC(),
			}, SessionTTL)

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context.
//
// Returns ("", false) if no valid token was present on the request.
//
// Usage in handlers:
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // reject — this route requires authentication
//	}
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the bearer token from the Authorization header and
// validates it.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errNoToken
	}

	return tokens.Validate(strings.TrimSpace(token))
}
