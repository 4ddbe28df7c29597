// Package auth issues and verifies the shared bearer tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/mangadock/mangadock/internal/model"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrWrongPassword is returned when the supplied password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrMissingToken is returned when no token was presented.
	ErrMissingToken = errors.New("token required")
	// ErrInvalidToken is returned for bad signatures, expired tokens and foreign claims.
	ErrInvalidToken = errors.New("token expired or invalid")
	// ErrEmptySecret is returned when the service is built without a signing secret.
	ErrEmptySecret = errors.New("signing secret must not be empty")
)

// Claims are the JWT claims carried by every token.
// User is always model.AuthorizedMarker; tokens carry no per-user identity.
type Claims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

// IssuedToken is a freshly signed token and its metadata.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 tokens from one shared secret and
// one shared password. It holds no server-side session state.
type TokenService struct {
	secret       []byte
	passwordHash string
	ttl          time.Duration
	now          func() time.Time
}

// NewTokenService creates a TokenService. The plaintext password is hashed
// immediately and not retained. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret, password string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &TokenService{
		secret:       []byte(secret),
		passwordHash: hash,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token if password matches the configured one.
func (s *TokenService) Issue(password string) (*IssuedToken, error) {
	ok, err := VerifyPassword(password, s.passwordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrWrongPassword
	}

	now := s.now()
	id := ulid.Make().String()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		User: model.AuthorizedMarker,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		ID:        id,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of token and returns its context.
func (s *TokenService) Verify(token string) (*model.AuthContext, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.User != model.AuthorizedMarker {
		return nil, ErrInvalidToken
	}

	authCtx := &model.AuthContext{
		TokenID:   claims.ID,
		Subject:   claims.User,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		authCtx.IssuedAt = claims.IssuedAt.Time
	}

	return authCtx, nil
}
