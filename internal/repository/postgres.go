package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/mangadock/mangadock/internal/model"
)

// schemaSQL creates the records table on first start.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS user_records (
		username   TEXT PRIMARY KEY,
		favorites  TEXT[] NOT NULL DEFAULT '{}',
		finished   JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps records in the user_records table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to PostgresStore.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Load returns the record for username. Missing rows and undecodable
// finished payloads degrade to empty values.
func (s *PostgresStore) Load(ctx context.Context, username string) (*model.UserRecord, error) {
	query := `
		SELECT favorites, finished
		FROM user_records
		WHERE username = $1
	`

	var (
		favorites []string
		finished  []byte
	)
	err := s.pool.QueryRow(ctx, query, username).Scan(
		pq.Array(&favorites),
		&finished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewUserRecord(), nil
		}
		return nil, fmt.Errorf("%w: load record: %w", ErrStoreIO, err)
	}

	record := &model.UserRecord{Favorites: favorites}
	if err := json.Unmarshal(finished, &record.Finished); err != nil {
		record.Finished = nil
	}
	return record.Normalize(), nil
}

// Save upserts the full record.
func (s *PostgresStore) Save(ctx context.Context, username string, record *model.UserRecord) error {
	record = record.Clone()

	finished, err := json.Marshal(record.Finished)
	if err != nil {
		return fmt.Errorf("%w: encode finished: %w", ErrStoreIO, err)
	}

	query := `
		INSERT INTO user_records (username, favorites, finished)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (username) DO UPDATE
		SET favorites = EXCLUDED.favorites,
		    finished = EXCLUDED.finished,
		    updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, username, pq.Array(record.Favorites), string(finished)); err != nil {
		return fmt.Errorf("%w: save record: %w", ErrStoreIO, err)
	}
	return nil
}

// Create inserts an empty record, failing with ErrRecordExists on conflict.
func (s *PostgresStore) Create(ctx context.Context, username string) error {
	query := `
		INSERT INTO user_records (username)
		VALUES ($1)
		ON CONFLICT (username) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("%w: create record: %w", ErrStoreIO, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordExists
	}
	return nil
}

// ListUsernames returns all usernames in lexical order.
func (s *PostgresStore) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT username FROM user_records ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStoreIO, err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%w: scan usernames: %w", ErrStoreIO, err)
	}
	return users, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
