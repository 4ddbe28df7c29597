// Package proxy fetches remote images on behalf of clients.
package proxy

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned when the target is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrBlockedHost is returned when the target resolves to a private or loopback address.
	ErrBlockedHost = errors.New("target host not allowed")
	// ErrFetchFailed is returned when the upstream request fails or answers non-2xx.
	ErrFetchFailed = errors.New("could not fetch image")
	// ErrTooLarge is returned when the upstream body exceeds the size cap.
	ErrTooLarge = errors.New("image exceeds size limit")
)

// BlockedCIDRs contains private/internal IP ranges.
var BlockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"100.64.0.0/10",  // Carrier-grade NAT
	"169.254.0.0/16", // Link-local, includes cloud metadata
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks []*net.IPNet

func init() {
	for _, cidr := range BlockedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			blockedNetworks = append(blockedNetworks, network)
		}
	}
}

// ParseTarget checks that rawURL is an absolute http or https URL with a host.
func ParseTarget(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrInvalidURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if parsed.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return parsed, nil
}

// ValidateTarget rejects targets that name or resolve to internal hosts.
// Unresolvable hosts pass; the fetch fails on them instead.
func ValidateTarget(ctx context.Context, target *url.URL) error {
	host := target.Hostname()
	if isLocalhostHostname(host) {
		return ErrBlockedHost
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return ErrBlockedHost
		}
		return nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if isBlockedIP(addr.IP) {
			return ErrBlockedHost
		}
	}
	return nil
}

func isLocalhostHostname(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		strings.HasSuffix(host, ".internal")
}

func isBlockedIP(ip net.IP) bool {
	if ip.IsUnspecified() || ip.IsLoopback() {
		return true
	}
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ExtractHost extracts host from URL for safe logging.
// Never log full URLs as they may contain secrets in path/query.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "(invalid)"
	}
	return parsed.Host
}
