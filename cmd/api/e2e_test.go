//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Runs against a live server started with the same SECRET_KEY and PASSWORD.

type tokenResponse struct {
	Token string `json:"token"`
}

type favoritesResponse struct {
	Success   bool     `json:"success"`
	Favorites []string `json:"favorites"`
}

type finishedResponse struct {
	Success          bool     `json:"success"`
	MangaName        string   `json:"mangaName"`
	FinishedChapters []string `json:"finishedChapters"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("MANGADOCK_BASE_URL", "http://localhost:3000")
	password := os.Getenv("PASSWORD")
	if password == "" {
		t.Fatalf("PASSWORD is required for e2e tests")
	}

	token := issueToken(t, baseURL, password)
	username := fmt.Sprintf("e2e-%d", time.Now().UnixNano())

	status := doJSON(t, baseURL+"/create_user", map[string]any{
		"token": token, "username": username,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from create_user, got %d", status)
	}

	var favs favoritesResponse
	status = doJSON(t, baseURL+"/add_fav", map[string]any{
		"token": token, "username": username, "mangaName": "One Piece",
	}, &favs)
	if status != http.StatusOK || len(favs.Favorites) != 1 || favs.Favorites[0] != "One Piece" {
		t.Fatalf("add_fav: status %d, favorites %v", status, favs.Favorites)
	}

	var fin finishedResponse
	status = doJSON(t, baseURL+"/add_finished", map[string]any{
		"token": token, "username": username, "mangaName": "One Piece", "chapterNumber": 1,
	}, &fin)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from add_finished, got %d", status)
	}

	fin = finishedResponse{}
	status = doJSON(t, baseURL+"/get_finished", map[string]any{
		"token": token, "username": username, "mangaName": "One Piece",
	}, &fin)
	if status != http.StatusOK || len(fin.FinishedChapters) != 1 || fin.FinishedChapters[0] != "1" {
		t.Fatalf("get_finished: status %d, chapters %v", status, fin.FinishedChapters)
	}
}

func TestE2EGateRejectsBeforeStore(t *testing.T) {
	baseURL := envOrDefault("MANGADOCK_BASE_URL", "http://localhost:3000")

	status := doJSON(t, baseURL+"/get_favorites", map[string]any{"username": "nobody"}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status = doJSON(t, baseURL+"/get_favorites", map[string]any{
		"token": "not-a-token", "username": "nobody",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 with bad token, got %d", status)
	}
}

func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("MANGADOCK_BASE_URL", "http://localhost:3000")
	password := os.Getenv("PASSWORD")
	if password == "" {
		t.Fatalf("PASSWORD is required for e2e tests")
	}

	fake := "fake." + strings.Repeat("x", 32) + ".sig"
	body := rawPost(t, baseURL+"/list_users", map[string]any{"token": fake})
	if strings.Contains(body, fake) {
		t.Error("error response echoed the submitted token")
	}

	body = rawPost(t, baseURL+"/get_token", map[string]any{"password": password + "-wrong"})
	if strings.Contains(body, password) {
		t.Error("error response echoed the submitted password")
	}

	token := issueToken(t, baseURL, password)
	body = rawPost(t, baseURL+"/list_users", map[string]any{"token": token})
	if strings.Contains(body, token) {
		t.Error("successful response echoed the token")
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func issueToken(t *testing.T, baseURL, password string) string {
	t.Helper()

	var resp tokenResponse
	status := doJSON(t, baseURL+"/get_token", map[string]any{"password": password}, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from get_token, got %d", status)
	}
	if resp.Token == "" {
		t.Fatalf("get_token response missing token")
	}
	return resp.Token
}

func doJSON(t *testing.T, url string, payload any, out any) int {
	t.Helper()

	resp := post(t, url, payload)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func rawPost(t *testing.T, url string, payload any) string {
	t.Helper()

	resp := post(t, url, payload)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func post(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	return resp
}
