package player

import (
	"context"
	"net/http"
	"strings"
)

// DefaultScriptHost is prepended to host-relative script addresses.
const DefaultScriptHost = "https://s.ytimg.com"

// Fetcher performs the GET for a player script. client.Client implements it.
// Retries, timeouts and cancellation belong to the implementation.
type Fetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (*http.Response, error)

// Get implements Fetcher.
func (f FetcherFunc) Get(ctx context.Context, url string) (*http.Response, error) {
	return f(ctx, url)
}

// HTTPFetcher adapts a plain *http.Client to Fetcher.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// Get implements Fetcher.
func (f HTTPFetcher) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	c := f.Client
	if c == nil {
		c = http.DefaultClient
	}
	return c.Do(req)
}

// ResolveScriptURL turns a script identity into a fetchable address.
// Scheme-relative addresses get "https:", host-relative ones get host
// (DefaultScriptHost when empty), anything else is returned as is.
func ResolveScriptURL(identity, host string) string {
	switch {
	case strings.HasPrefix(identity, "//"):
		return "https:" + identity
	case strings.HasPrefix(identity, "/"):
		if host == "" {
			host = DefaultScriptHost
		}
		return strings.TrimSuffix(host, "/") + identity
	default:
		return identity
	}
}
