package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mangadock/mangadock/internal/auth"
	"github.com/mangadock/mangadock/internal/metrics"
	"github.com/mangadock/mangadock/internal/model"
)

// AccessTokenHeader is the alternative header carrying the access token.
const AccessTokenHeader = "X-Access-Token"

// TokenVerifier checks an access token.
type TokenVerifier interface {
	Verify(token string) (*model.AuthContext, error)
}

// TokenCache remembers recently verified tokens by hash.
type TokenCache interface {
	GetVerifiedToken(ctx context.Context, tokenHash string) *model.AuthContext
	SetVerifiedToken(ctx context.Context, tokenHash string, authCtx *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	// Cache is optional.
	Cache   TokenCache
	Metrics metrics.Recorder
}

// Auth returns the request gate. It finds the access token in the
// Authorization header, the X-Access-Token header or the JSON body field
// "token", verifies it and injects the auth context into the request.
// A missing token is answered with 401 and an invalid one with 403; the
// wrapped handler never runs in either case.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractToken(r)
			if err != nil {
				writeBodyError(w, err)
				return
			}

			if token == "" {
				recorder.IncTokenRejected("missing")
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w, http.StatusUnauthorized, "MISSING_TOKEN", "Token missing")
				return
			}

			var cacheKey string
			if cfg.Cache != nil {
				cacheKey = auth.QuickHash(token)
				if authCtx := cfg.Cache.GetVerifiedToken(r.Context(), cacheKey); authCtx != nil {
					ctx := auth.ContextWithAuth(r.Context(), authCtx)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			authCtx, err := cfg.Verifier.Verify(token)
			if err != nil {
				recorder.IncTokenRejected("invalid")
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w, http.StatusForbidden, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			if cfg.Cache != nil {
				if err := cfg.Cache.SetVerifiedToken(r.Context(), cacheKey, authCtx); err != nil {
					cfg.Logger.Debug("token cache write failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("token_id", authCtx.TokenID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken returns the access token of r, or "" if it carries none.
// Headers win over the body. A body that is read is restored for the handler.
func extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, nil
		}
	}

	if token := strings.TrimSpace(r.Header.Get(AccessTokenHeader)); token != "" {
		return token, nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}

	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(data))

	return tokenFromBody(data), nil
}

// tokenFromBody reads the "token" field of a JSON object. A non-string
// value is returned raw so that verification rejects it.
func tokenFromBody(data []byte) string {
	var body struct {
		Token json.RawMessage `json:"token"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if len(body.Token) == 0 || string(body.Token) == "null" {
		return ""
	}

	var token string
	if err := json.Unmarshal(body.Token, &token); err != nil {
		return string(body.Token)
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes an auth failure in the API error shape.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}

// writeBodyError answers a request whose body could not be read.
func writeBodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
}

// writeError writes {"error": message, "code": code}.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
