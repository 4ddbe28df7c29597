package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangadock/mangadock/internal/model"
)

const (
	testSecret   = "test-signing-secret"
	testPassword = "hunter2"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, testPassword, 0)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := NewTokenService("", testPassword, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, 24*time.Hour, svc.TTL())
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	assert.Len(t, issued.ID, 26, "token ID should be a ULID")
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, time.Minute)

	authCtx, err := svc.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, model.AuthorizedMarker, authCtx.Subject)
	assert.Equal(t, issued.ID, authCtx.TokenID)
	assert.False(t, authCtx.Expired(time.Now()))
}

func TestTokenService_IssueWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Issue("not-the-password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Issue("")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestTokenService_VerifyMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenService_VerifyRejects(t *testing.T) {
	svc := newTestService(t)

	other, err := NewTokenService("another-secret", testPassword, time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(testPassword)
	require.NoError(t, err)

	expiredSvc := newTestService(t)
	expiredSvc.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	expired, err := expiredSvc.Issue(testPassword)
	require.NoError(t, err)

	wrongMarker := signClaims(t, jwt.SigningMethodHS256, Claims{
		User: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	noExpiry := signClaims(t, jwt.SigningMethodHS256, Claims{User: model.AuthorizedMarker})

	hs512 := signClaims(t, jwt.SigningMethodHS512, Claims{
		User: model.AuthorizedMarker,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	valid, err := svc.Issue(testPassword)
	require.NoError(t, err)
	validParts := strings.Split(valid.Token, ".")
	foreignParts := strings.Split(foreign.Token, ".")
	tampered := validParts[0] + "." + validParts[1] + "." + foreignParts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"foreign secret", foreign.Token},
		{"expired", expired.Token},
		{"wrong marker", wrongMarker},
		{"no expiry", noExpiry},
		{"unexpected algorithm", hs512},
		{"tampered signature", tampered},
		{"unsigned", unsignedToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestClaims_CarryNoIdentity(t *testing.T) {
	svc := newTestService(t)

	issued, err := svc.Issue(testPassword)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)

	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"user":"authorized"`)
	assert.NotContains(t, string(payload), `"sub"`)
}

func signClaims(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func unsignedToken(t *testing.T) string {
	t.Helper()
	claims := Claims{
		User: model.AuthorizedMarker,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}
