// Package main is the entry point for the doctalk API server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main"
// package. The main package should be kept minimal — its job is to:
// 1. Read configuration (env vars, optionally from a .env file)
// 2. Create dependencies (logger, database, cache, summarizer)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/service, etc.). This is the "composition root": the one place
// where concrete implementations are chosen and wired together.
package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sakif/doctalk/internal/auth"
	"github.com/sakif/doctalk/internal/cache"
	"github.com/sakif/doctalk/internal/cache/memory"
	redisx "github.com/sakif/doctalk/internal/cache/redis"
	"github.com/sakif/doctalk/internal/repository/sqlite"
	"github.com/sakif/doctalk/internal/server"
	"github.com/sakif/doctalk/internal/service"
	"github.com/sakif/doctalk/internal/summarizer"
	"github.com/sakif/doctalk/internal/summarizer/openai"
)

// config is parsed from the environment by caarlos0/env. Each field's `env`
// tag names the variable; envDefault supplies the value when it is unset.
//
// CONFIG SURFACE:
//
//	PORT                 HTTP port (default 8080)
//	DB_PATH              SQLite file (default data/doctalk.db)
//	JWT_SECRET           HMAC secret for bearer tokens (required, ≥16 chars)
//	REDIS_ADDR           host:port — set it to cache in Redis
//	REDIS_PASSWORD       Redis auth (optional)
//	REDIS_DB             Redis database number (default 0)
//	CACHE_DISABLED       "true" runs with no cache at all
//	SEARCH_CACHE_TTL     lifetime of cached search results (default 1h)
//	DOC_META_CACHE_TTL   lifetime of cached document metadata (default 1h)
//	OPENAI_API_KEY       enables the real summarizer; unset = extractive fallback
//	OPENAI_MODEL         chat model name (optional)
type config struct {
	Port          int           `env:"PORT" envDefault:"8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"data/doctalk.db"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheDisabled bool          `env:"CACHE_DISABLED"`
	SearchTTL     time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"1h"`
	MetaTTL       time.Duration `env:"DOC_META_CACHE_TTL" envDefault:"1h"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// .env is a development convenience — absence is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env file", slog.String("error", err.Error()))
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === DATABASE ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === CACHE ===
	// Three configurations, one Store: Redis when an address is configured,
	// an in-process map otherwise, and nothing at all when disabled. Every
	// code path downstream is identical — the cache is an accelerator, and
	// the service returns the same answers in all three modes.
	backend, cacheCloser := buildCacheBackend(cfg, logger)
	cacheStore := cache.New(backend, cache.DefaultTimeout, logger)

	// === SUMMARIZER ===
	var sum summarizer.Summarizer
	if cfg.OpenAIKey != "" {
		sum = openai.New(cfg.OpenAIKey, cfg.OpenAIModel)
		logger.Info("summarizer: openai", slog.String("model", cfg.OpenAIModel))
	} else {
		sum = summarizer.Extractive{}
		logger.Warn("OPENAI_API_KEY not set — using the extractive fallback summarizer")
	}

	// === AUTH ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Error("invalid JWT secret", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === WIRE AND START ===
	deps := server.Deps{
		Documents: service.NewDocumentService(db, cacheStore, sum, logger, service.Config{
			SearchTTL: cfg.SearchTTL,
			MetaTTL:   cfg.MetaTTL,
		}),
		Accounts: service.NewAccountService(db, logger),
		Tokens:   tokens,
		Sessions: cacheStore,
	}

	srv := server.New(server.Config{Port: cfg.Port}, deps, logger, db, cacheCloser)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildCacheBackend picks the cache implementation from config. The returned
// closer is what the server shuts down on exit; it is never nil.
func buildCacheBackend(cfg config, logger *slog.Logger) (cache.Backend, io.Closer) {
	if cfg.CacheDisabled {
		logger.Warn("cache disabled — every read goes to the store")
		return nil, nopCloser{}
	}

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rdb, err := redisx.New(ctx, redisx.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// Cache-aside means a missing cache degrades performance, not
			// correctness — fall back to in-process caching and keep going.
			logger.Warn("redis unavailable, falling back to in-memory cache",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
			mem := memory.New(5 * time.Minute)
			return mem, mem
		}
		logger.Info("cache: redis", slog.String("addr", cfg.RedisAddr))
		return rdb, rdb
	}

	mem := memory.New(5 * time.Minute)
	logger.Info("cache: in-memory")
	return mem, mem
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
