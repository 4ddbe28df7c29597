package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mangadock/mangadock/internal/auth"
	"github.com/mangadock/mangadock/internal/handler/dto"
	"github.com/mangadock/mangadock/internal/metrics"
)

// TokenHandler issues and checks access tokens.
type TokenHandler struct {
	tokens  *auth.TokenService
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens *auth.TokenService, recorder metrics.Recorder, logger *slog.Logger) *TokenHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TokenHandler{
		tokens:  tokens,
		metrics: recorder,
		logger:  logger,
	}
}

// Issue handles POST /get_token. It is the only endpoint outside the gate.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	issued, err := h.tokens.Issue(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			h.metrics.IncTokenRejected("wrong_password")
			h.logger.Warn("token_denied", "reason", "wrong_password", "ip", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "WRONG_PASSWORD", "Wrong password")
			return
		}
		h.logger.Error("token_issue_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.metrics.IncTokenIssued()
	h.logger.Info("token_issued", "token_id", issued.ID, "expires_at", issued.ExpiresAt)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	})
}

// Verify handles POST /verify_token. The gate has already checked the
// token; this reports its expiry to the client.
func (h *TokenHandler) Verify(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "Token missing")
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyResponse{
		Valid:     true,
		ExpiresAt: authCtx.ExpiresAt,
	})
}
