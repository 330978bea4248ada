// Command seed creates a demo user in the SQLite database and prints a
// bearer token for it, so the API can be exercised with curl right away:
//
//	JWT_SECRET=dev-secret-16-chars go run ./cmd/seed
//	curl -H "Authorization: Bearer <token>" \
//	     localhost:8080/api/users/<id>/documents
//
// Run it as often as you like — each run creates a fresh user.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/sakif/doctalk/internal/auth"
	"github.com/sakif/doctalk/internal/repository/sqlite"
)

type config struct {
	DBPath    string `env:"DB_PATH" envDefault:"data/doctalk.db"`
	JWTSecret string `env:"JWT_SECRET,required"`
	Email     string `env:"SEED_EMAIL" envDefault:"demo@example.com"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env file", slog.String("error", err.Error()))
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Error("invalid JWT secret", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// A random UUID stands in for the id the identity provider would assign.
	userID := uuid.NewString()

	u, err := db.CreateUser(context.Background(), userID, cfg.Email)
	if err != nil {
		logger.Error("failed to create user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// A day-long token is convenient for local poking; real clients get
	// short-lived tokens from the identity provider.
	token, err := tokens.GenerateWithDuration(u.ID, 24*time.Hour)
	if err != nil {
		logger.Error("failed to generate token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("user id: %s\nemail:   %s\ntoken:   %s\n", u.ID, u.Email, token)
}
