package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mangadock/mangadock/internal/model"
)

// recordKeyPrefix is the Redis key prefix for user records.
const recordKeyPrefix = "mangadock:user:"

// RedisStore keeps each record as a JSON string under mangadock:user:<username>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already connected client.
// The client is owned by the caller and is not closed by Close.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(username string) string {
	return recordKeyPrefix + username
}

// Load returns the record for username. Missing keys and corrupt
// payloads degrade to an empty record.
func (s *RedisStore) Load(ctx context.Context, username string) (*model.UserRecord, error) {
	data, err := s.client.Get(ctx, recordKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewUserRecord(), nil
		}
		return nil, fmt.Errorf("%w: load record: %w", ErrStoreIO, err)
	}
	return decodeRecord(data), nil
}

// Save overwrites the record.
func (s *RedisStore) Save(ctx context.Context, username string, record *model.UserRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStoreIO, err)
	}
	if err := s.client.Set(ctx, recordKey(username), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: save record: %w", ErrStoreIO, err)
	}
	return nil
}

// Create stores an empty record only if none exists.
func (s *RedisStore) Create(ctx context.Context, username string) error {
	data, err := encodeRecord(model.NewUserRecord())
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrStoreIO, err)
	}

	created, err := s.client.SetNX(ctx, recordKey(username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: create record: %w", ErrStoreIO, err)
	}
	if !created {
		return ErrRecordExists
	}
	return nil
}

// ListUsernames scans the record keyspace. Order is lexical.
func (s *RedisStore) ListUsernames(ctx context.Context) ([]string, error) {
	var users []string

	iter := s.client.Scan(ctx, 0, recordKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), recordKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan records: %w", ErrStoreIO, err)
	}

	if users == nil {
		users = []string{}
	}
	sort.Strings(users)
	return users, nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the shared client is closed by its owner.
func (s *RedisStore) Close() error {
	return nil
}
