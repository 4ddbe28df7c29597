package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultMaxBytes caps upstream bodies when no limit is configured.
const DefaultMaxBytes = 20 << 20

// Config controls a Fetcher.
type Config struct {
	Timeout      time.Duration
	MaxBytes     int64
	AllowPrivate bool
}

// Image is an upstream response body with its declared content type.
type Image struct {
	Body        []byte
	ContentType string
}

// Fetcher retrieves images from arbitrary public URLs.
type Fetcher struct {
	client       *http.Client
	maxBytes     int64
	allowPrivate bool
}

// NewFetcher creates a Fetcher from cfg.
func NewFetcher(cfg Config) *Fetcher {
	return NewFetcherWithClient(NewHTTPClient(cfg.Timeout, cfg.AllowPrivate), cfg)
}

// NewFetcherWithClient creates a Fetcher that uses client for requests.
func NewFetcherWithClient(client *http.Client, cfg Config) *Fetcher {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:       client,
		maxBytes:     maxBytes,
		allowPrivate: cfg.AllowPrivate,
	}
}

// Fetch downloads rawURL and returns its body and content type.
// It returns ErrInvalidURL or ErrBlockedHost before any network access,
// ErrTooLarge when the body exceeds the cap, and ErrFetchFailed otherwise.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	if !f.allowPrivate {
		if err := ValidateTarget(ctx, target); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedHost) {
			return nil, ErrBlockedHost
		}
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return &Image{Body: body, ContentType: contentType}, nil
}
