//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadock/mangadock/internal/model"
	"github.com/mangadock/mangadock/internal/testutil"
)

// ============================================================================
// Shared RecordStore contract, run against every network backend
// ============================================================================

func runRecordStoreContract(t *testing.T, ctx context.Context, store RecordStore) {
	t.Run("load missing", func(t *testing.T) {
		record, err := store.Load(ctx, testutil.UniqueUsername("ghost"))
		require.NoError(t, err)
		assert.Equal(t, []string{}, record.Favorites)
		assert.Equal(t, map[string][]string{}, record.Finished)
	})

	t.Run("save and load", func(t *testing.T) {
		username := testutil.UniqueUsername("reader")
		require.NoError(t, store.Save(ctx, username, testutil.NewTestRecord(t, "Berserk", "Monster")))

		record, err := store.Load(ctx, username)
		require.NoError(t, err)
		assert.Equal(t, []string{"Berserk", "Monster"}, record.Favorites)
		assert.Equal(t, []string{"1"}, record.Finished["Monster"])
	})

	t.Run("save replaces", func(t *testing.T) {
		username := testutil.UniqueUsername("reader")
		require.NoError(t, store.Save(ctx, username, testutil.NewTestRecord(t, "A")))
		require.NoError(t, store.Save(ctx, username, model.NewUserRecord()))

		record, err := store.Load(ctx, username)
		require.NoError(t, err)
		assert.Empty(t, record.Favorites)
		assert.Empty(t, record.Finished)
	})

	t.Run("create twice", func(t *testing.T) {
		username := testutil.UniqueUsername("new")
		require.NoError(t, store.Create(ctx, username))
		assert.ErrorIs(t, store.Create(ctx, username), ErrRecordExists)
	})

	t.Run("list", func(t *testing.T) {
		username := testutil.UniqueUsername("listed")
		require.NoError(t, store.Create(ctx, username))

		users, err := store.ListUsernames(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, username)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestIntegrationPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	store, err := NewPostgresStore(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, store.Pool())
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	require.NoError(t, testutil.TruncateRecords(ctx, store.Pool()))

	runRecordStoreContract(t, ctx, store)

	t.Run("corrupt finished degrades", func(t *testing.T) {
		username := testutil.UniqueUsername("corrupt")
		_, err := store.Pool().Exec(ctx,
			`INSERT INTO user_records (username, favorites, finished) VALUES ($1, '{"A"}', '"oops"'::jsonb)`,
			username,
		)
		require.NoError(t, err)

		record, err := store.Load(ctx, username)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, record.Favorites)
		assert.Equal(t, map[string][]string{}, record.Finished)
	})
}

func TestIntegrationRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, testutil.FlushRedis(ctx, client))

	store := NewRedisStore(client)
	runRecordStoreContract(t, ctx, store)

	t.Run("corrupt payload degrades", func(t *testing.T) {
		username := testutil.UniqueUsername("corrupt")
		require.NoError(t, client.Set(ctx, recordKey(username), "{broken", 0).Err())

		record, err := store.Load(ctx, username)
		require.NoError(t, err)
		assert.Empty(t, record.Favorites)
	})
}
