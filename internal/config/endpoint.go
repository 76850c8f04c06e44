package config

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAPIURL is used when neither flag, environment nor config file name an API
const DefaultAPIURL = "http://127.0.0.1:8080"

// NormalizeAPIURL validates an API base URL and strips trailing slashes
func NormalizeAPIURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", fmt.Errorf("api url is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid api url %q: missing host", raw)
	}

	return trimmed, nil
}

// ResolveAPIURL picks the first non-empty candidate in precedence order
// (flag or environment, then config file) and falls back to DefaultAPIURL
func ResolveAPIURL(candidates ...string) (string, error) {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return NormalizeAPIURL(c)
		}
	}
	return DefaultAPIURL, nil
}
