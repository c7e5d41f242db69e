// Package client provides the HTTP client used to fetch player scripts.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/ytget/ytcipher/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 1

	userAgentValue   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	acceptEncoding   = "br, zstd, gzip"
	initialBackoff   = 200 * time.Millisecond
	maxBackoff       = 3 * time.Second
	retryableMinCode = http.StatusInternalServerError // 500
)

// defaultTransport is a tuned HTTP transport reused across clients.
// Compression is negotiated by the client itself so that brotli and zstd
// are accepted too.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	ForceAttemptHTTP2:     true,
	DisableCompression:    true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	ProxyURL  string
}

// Client wraps http.Client with default headers, response decoding and an
// optional retry on transient failures.
type Client struct {
	HTTPClient *http.Client
	// Retries is the total number of attempts. The default of 1 makes a
	// single request.
	Retries   int
	UserAgent string
}

// New creates a new Client with a tuned Transport and default timeout.
func New() *Client {
	return NewWith(Config{})
}

// NewWith creates a new client with provided config. Zero values use defaults.
func NewWith(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgentValue
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			tr.Proxy = http.ProxyURL(u)
		} else {
			logger.WithComponent(logger.ComponentClient).Warn("Ignoring invalid proxy URL", map[string]interface{}{
				"proxy": cfg.ProxyURL,
				"error": err.Error(),
			})
		}
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		Retries:   retries,
		UserAgent: ua,
	}
}

// Get performs a GET request bound to ctx. Responses with a 5xx status or a
// transport error are retried while attempts remain; any other response is
// returned as is with its body already decoded.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	ua := c.UserAgent
	if ua == "" {
		ua = userAgentValue
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept-Encoding", acceptEncoding)

	log := logger.WithComponent(logger.ComponentClient)
	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}
	backoff := initialBackoff

	var resp *http.Response
	for attempt := 1; ; attempt++ {
		resp, err = c.HTTPClient.Do(req)
		if err == nil && resp.StatusCode < retryableMinCode {
			return decodeBody(resp)
		}
		if attempt >= attempts {
			break
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		log.Debug("Retrying request", map[string]interface{}{
			"url":     rawURL,
			"attempt": attempt,
			"backoff": backoff.String(),
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	if err != nil {
		return nil, err
	}
	return decodeBody(resp)
}

// decodeBody replaces a compressed body with a decoding reader and drops the
// encoding headers.
func decodeBody(resp *http.Response) (*http.Response, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var (
		r   io.Reader
		cls func()
	)
	switch enc {
	case "", "identity":
		return resp, nil
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("gzip response: %w", err)
		}
		r = zr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("zstd response: %w", err)
		}
		r, cls = zr, zr.Close
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}

	resp.Body = &decodedBody{Reader: r, body: resp.Body, release: cls}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type decodedBody struct {
	io.Reader
	body    io.Closer
	release func()
}

func (d *decodedBody) Close() error {
	if d.release != nil {
		d.release()
	}
	return d.body.Close()
}
