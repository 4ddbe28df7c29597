package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mangadock/mangadock/internal/model"
)

const (
	// tokenCachePrefix is the Redis key prefix for verified tokens.
	tokenCachePrefix = keyPrefix + "token:"
	// MaxTokenCacheTTL caps how long a verification result is reused.
	MaxTokenCacheTTL = 5 * time.Minute
)

// cachedToken is the stored form of a verified token context.
type cachedToken struct {
	TokenID   string    `json:"token_id"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetVerifiedToken returns a previously verified token context.
// Misses, corrupt entries and Redis errors all return nil.
func (c *Cache) GetVerifiedToken(ctx context.Context, tokenHash string) *model.AuthContext {
	data, err := c.client.Get(ctx, tokenCachePrefix+tokenHash).Bytes()
	if err != nil {
		return nil
	}

	var cached cachedToken
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}

	authCtx := &model.AuthContext{
		TokenID:   cached.TokenID,
		Subject:   cached.Subject,
		IssuedAt:  cached.IssuedAt,
		ExpiresAt: cached.ExpiresAt,
	}
	if authCtx.Expired(time.Now()) {
		return nil
	}
	return authCtx
}

// SetVerifiedToken caches a verified context until the earlier of
// MaxTokenCacheTTL and the token's own expiry.
func (c *Cache) SetVerifiedToken(ctx context.Context, tokenHash string, authCtx *model.AuthContext) error {
	ttl := TokenCacheTTL(authCtx, time.Now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(cachedToken{
		TokenID:   authCtx.TokenID,
		Subject:   authCtx.Subject,
		IssuedAt:  authCtx.IssuedAt,
		ExpiresAt: authCtx.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal token context: %w", err)
	}

	return c.client.Set(ctx, tokenCachePrefix+tokenHash, data, ttl).Err()
}

// TokenCacheTTL returns how long authCtx may be cached at now.
func TokenCacheTTL(authCtx *model.AuthContext, now time.Time) time.Duration {
	if authCtx.ExpiresAt.IsZero() {
		return MaxTokenCacheTTL
	}
	remaining := authCtx.ExpiresAt.Sub(now)
	if remaining < MaxTokenCacheTTL {
		return remaining
	}
	return MaxTokenCacheTTL
}
