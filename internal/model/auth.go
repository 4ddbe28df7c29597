package model

import "time"

// AuthorizedMarker is the fixed claim value carried by every issued token.
const AuthorizedMarker = "authorized"

// AuthContext holds the verified token context.
// This is injected into the request context by the auth middleware.
// Tokens carry no identity, so every AuthContext grants access to every user record.
type AuthContext struct {
	TokenID   string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token behind the context has expired at now.
func (a *AuthContext) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}
