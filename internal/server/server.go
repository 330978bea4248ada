// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// main.go's job is to read configuration and construct the concrete
// dependencies (SQLite store, Redis cache, OpenAI client). This package
// receives them ready-made and only does the wiring. Tests construct the
// same router with in-memory pieces through NewRouter.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/doctalk/internal/auth"
	"github.com/sakif/doctalk/internal/cache"
	"github.com/sakif/doctalk/internal/handler"
	"github.com/sakif/doctalk/internal/middleware"
	"github.com/sakif/doctalk/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port int
}

// Deps bundles the constructed dependencies the router needs. main.go fills
// this from real infrastructure; tests fill it from mocks and in-memory
// implementations — the router cannot tell the difference.
type Deps struct {
	Documents *service.DocumentService
	Accounts  *service.AccountService
	Tokens    *auth.TokenService
	Sessions  *cache.Store
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The server owns shutdown, so it also owns closing the resources behind the
// router (database connection, cache client). main.go hands them over as
// closers; Start() closes them after the listener stops, in reverse order of
// construction.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	closers []io.Closer
}

// New creates a Server around the given dependencies. closers are shut down
// when the server stops, last-constructed first.
func New(cfg Config, deps Deps, logger *slog.Logger, closers ...io.Closer) *Server {
	return &Server{
		router:  NewRouter(deps, logger),
		config:  cfg,
		logger:  logger,
		closers: closers,
	}
}

// NewRouter builds the full route table.
//
// ROUTE STRUCTURE:
//
//	GET    /health                                          → liveness probe
//	POST   /api/users/{userId}                              → provision account
//	POST   /api/users/{userId}/documents                    → upload + summarize
//	GET    /api/users/{userId}/documents                    → full list
//	DELETE /api/users/{userId}/documents                    → clear collection
//	GET    /api/users/{userId}/documents/count              → collection size
//	GET    /api/users/{userId}/documents/search?term=x      → title search
//	GET    /api/users/{userId}/documents/{docId}            → one document
//	GET    /api/users/{userId}/documents/{docId}/details    → metadata view
//	PATCH  /api/users/{userId}/documents/{docId}/title      → rename
//	DELETE /api/users/{userId}/documents/{docId}            → delete one
//	GET    /api/users/{userId}/email                        → account email
//	GET    /api/users/{userId}/joined-date                  → account created at
//	GET    /api/users/{userId}/days-since-joined            → account age in days
//
// Everything under /api requires a bearer token; /health does not.
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. RequireAuth (API routes only) — token check + session refresh
func NewRouter(deps Deps, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	docHandler := handler.NewDocumentHandler(deps.Documents, deps.Accounts, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, deps.Sessions))

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Post("/", docHandler.HandleProvision)
			r.Get("/email", docHandler.HandleEmail)
			r.Get("/joined-date", docHandler.HandleJoinedDate)
			r.Get("/days-since-joined", docHandler.HandleDaysSinceJoined)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", docHandler.HandleUpload)
				r.Get("/", docHandler.HandleList)
				r.Delete("/", docHandler.HandleDeleteAll)
				r.Get("/count", docHandler.HandleCount)
				r.Get("/search", docHandler.HandleSearch)
				r.Get("/{docId}", docHandler.HandleGet)
				r.Get("/{docId}/details", docHandler.HandleDetails)
				r.Patch("/{docId}/title", docHandler.HandleRename)
				r.Delete("/{docId}", docHandler.HandleDelete)
			})
		})
	})

	return r
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the owned resources (flushes the SQLite WAL, closes Redis)
func (s *Server) Start() error {
	defer s.closeAll()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// closeAll closes owned resources in reverse order.
func (s *Server) closeAll() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Error("failed to close resource", slog.String("error", err.Error()))
		}
	}
}
