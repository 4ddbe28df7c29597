package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

const (
	// DefaultTimeout is the total request timeout.
	DefaultTimeout = 20 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects = 5
	// UserAgent identifies the proxy to upstream servers.
	UserAgent = "Mangadock-Proxy/1.0"
)

var errTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient creates an HTTP client for upstream image fetches.
// Unless allowPrivate is set, connections to internal addresses are refused
// at dial time and every redirect target is re-validated.
func NewHTTPClient(timeout time.Duration, allowPrivate bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = refuseBlockedAddr
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > MaxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return ErrInvalidURL
			}
			if allowPrivate {
				return nil
			}
			return ValidateTarget(req.Context(), req.URL)
		},
	}
}

// refuseBlockedAddr rejects dials to internal addresses after DNS resolution.
func refuseBlockedAddr(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedHost, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return ErrBlockedHost
	}
	return nil
}
