package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mangadock/mangadock/internal/auth"
	"github.com/mangadock/mangadock/internal/config"
	"github.com/mangadock/mangadock/internal/model"
	"github.com/mangadock/mangadock/internal/repository"
)

type output struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Users     []string  `json:"users,omitempty"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("SECRET_KEY"), "JWT signing secret")
		password    = flag.String("password", os.Getenv("PASSWORD"), "Shared access password")
		ttl         = flag.Duration("ttl", auth.DefaultTokenTTL, "Token lifetime")
		usersInput  = flag.String("users", "", "Comma-separated usernames to create if absent")
		backend     = flag.String("backend", envOr("STORAGE_BACKEND", config.BackendFile), "Record store: file or postgres")
		storageDir  = flag.String("dir", envOr("STORAGE_DIR", "./mangas"), "Directory of the file backend")
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "SECRET_KEY and PASSWORD are required")
		os.Exit(1)
	}

	users, err := parseUsers(*usersInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(users) > 0 {
		if err := ensureUsers(ctx, *backend, *storageDir, *databaseURL, users); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	tokens, err := auth.NewTokenService(*secret, *password, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token service:", err)
		os.Exit(1)
	}

	issued, err := tokens.Issue(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		Token:     issued.Token,
		TokenID:   issued.ID,
		ExpiresAt: issued.ExpiresAt,
		Users:     users,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseUsers(input string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	users := make([]string, 0, len(parts))
	for _, part := range parts {
		username := strings.TrimSpace(part)
		if username == "" {
			continue
		}
		if err := model.ValidateUsername(username); err != nil {
			return nil, fmt.Errorf("invalid username %q: %w", username, err)
		}
		users = append(users, username)
	}
	return users, nil
}

func ensureUsers(ctx context.Context, backend, dir, databaseURL string, users []string) error {
	var (
		store repository.RecordStore
		err   error
	)
	switch backend {
	case config.BackendFile:
		store, err = repository.NewFileStore(dir)
	case config.BackendPostgres:
		if databaseURL == "" {
			return config.ErrMissingDatabaseURL
		}
		store, err = repository.NewPostgresStore(ctx, databaseURL)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
	}
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	for _, username := range users {
		err := store.Create(ctx, username)
		if err != nil && !errors.Is(err, repository.ErrRecordExists) {
			return fmt.Errorf("create user %s: %w", username, err)
		}
	}
	return nil
}
