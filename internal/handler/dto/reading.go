// Package dto provides Data Transfer Objects for API requests and responses.
// Field names follow the JSON contract existing reader clients already speak.
package dto

import (
	"time"

	"github.com/mangadock/mangadock/internal/model"
)

// TokenRequest is the body of POST /get_token.
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyResponse reports that the presented token is valid.
type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserRequest names a user.
type UserRequest struct {
	Username string `json:"username"`
}

// FavoriteRequest names a user and a manga title.
type FavoriteRequest struct {
	Username  string `json:"username"`
	MangaName string `json:"mangaName"`
}

// FinishedRequest identifies a chapter of a title for a user.
// ChapterNumber accepts both JSON numbers and strings.
type FinishedRequest struct {
	Username      string             `json:"username"`
	MangaName     string             `json:"mangaName"`
	ChapterNumber model.ChapterLabel `json:"chapterNumber"`
}

// ProxyRequest is the body of POST /proxy.
type ProxyRequest struct {
	URL string `json:"url"`
}

// SuccessResponse acknowledges a mutation without payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// FavoritesResponse carries a user's favorites.
type FavoritesResponse struct {
	Success   bool     `json:"success"`
	Favorites []string `json:"favorites"`
}

// FinishedResponse carries the finished chapters of one title.
// MangaName is only echoed by reads.
type FinishedResponse struct {
	Success          bool     `json:"success"`
	MangaName        string   `json:"mangaName,omitempty"`
	FinishedChapters []string `json:"finishedChapters"`
}

// UsersResponse lists every known username.
type UsersResponse struct {
	Users []string `json:"users"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
