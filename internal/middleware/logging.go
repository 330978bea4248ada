// Package middleware contains HTTP middleware functions.
//
// MIDDLEWARE IN THIS SERVER:
// A middleware takes the next http.Handler and returns a new one that runs
// code before and/or after it:
//
//	func WithTiming(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        start := time.Now()
//	        next.ServeHTTP(w, r)
//	        log.Println(time.Since(start))
//	    })
//	}
//
// chi composes these into a chain (see server.NewRouter for the order). This
// package holds the ones we wrote ourselves; request-ID generation and panic
// recovery come straight from chi's middleware package.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to record what the handler sent.
// The standard interface gives no way to read the status code or byte count
// back out after the fact, so the wrapper captures them on the way through.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

// WriteHeader records the status code, then lets the embedded writer send it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write counts response bytes as they go out.
func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger emits one structured slog line per completed request.
//
// The requestId field carries the id minted by chi's RequestID middleware —
// the same value the client received in the X-Request-ID header — so a user
// report quoting that header can be matched to the exact log line. Status
// defaults to 200 because handlers that only call Write never invoke
// WriteHeader explicitly.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("requestId", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}
