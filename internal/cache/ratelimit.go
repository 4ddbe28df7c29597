package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix is the Redis key prefix for token buckets.
const rateLimitPrefix = keyPrefix + "ratelimit:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes one token atomically.
// Returns {allowed, retry_after_seconds, remaining_tokens}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'ts')
	local tokens = tonumber(data[1]) or burst
	local ts = tonumber(data[2]) or now

	tokens = math.min(burst, tokens + math.max(0, now - ts) * rate)

	local allowed = 0
	local retry_after = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'ts', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Allow consumes one token from the bucket identified by scope and client.
// The client identifier is hashed before it becomes part of a key.
// Redis failures fail open.
func (c *Cache) Allow(ctx context.Context, scope, client string, ratePerSecond, burst int) *RateLimitResult {
	if ratePerSecond <= 0 || burst <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}
	}

	key := rateLimitPrefix + scope + ":" + hashClient(client)
	ttl := bucketTTL(ratePerSecond, burst)

	res, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, time.Now().Unix(), ttl,
	).Int64Slice()
	if err != nil || len(res) != 3 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Second,
		Remaining:  res[2],
	}
}

// bucketTTL is long enough for an empty bucket to refill completely.
func bucketTTL(ratePerSecond, burst int) int {
	return int(math.Ceil(float64(burst)/float64(ratePerSecond))) + 1
}

// hashClient returns a truncated SHA256 of a client identifier so raw IPs
// never land in Redis.
func hashClient(client string) string {
	sum := sha256.Sum256([]byte(client))
	return hex.EncodeToString(sum[:8])
}
