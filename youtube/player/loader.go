package player

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/ytget/ytcipher/internal/logger"
	"github.com/ytget/ytcipher/youtube/cipher"
)

// Loader returns the cipher for a player script, fetching and parsing each
// script at most once. It is safe for concurrent use.
type Loader struct {
	fetcher    Fetcher
	cache      *Cache
	policy     LoadPolicy
	recognizer cipher.Recognizer
	store      Store
	verifier   cipher.Verifier
	scriptHost string

	tracer  trace.Tracer
	metrics *loaderMetrics
	log     *logger.ComponentLogger
}

// NewLoader creates a Loader that fetches scripts with fetcher. Defaults: an
// empty cache, the PerKey policy, the pattern recognizer, no store and no
// verification.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{
		fetcher:    fetcher,
		cache:      NewCache(),
		policy:     &PerKey{},
		recognizer: cipher.PatternRecognizer{},
		scriptHost: DefaultScriptHost,
		tracer:     tracenoop.NewTracerProvider().Tracer(instrumentationName),
		metrics:    noopLoaderMetrics(),
	}
}

// WithFetcher replaces the script fetcher.
func (l *Loader) WithFetcher(f Fetcher) *Loader {
	if f != nil {
		l.fetcher = f
	}
	return l
}

// WithCache sets the in-memory cache. Loaders sharing a cache share entries.
func (l *Loader) WithCache(c *Cache) *Loader {
	if c != nil {
		l.cache = c
	}
	return l
}

// WithPolicy sets the concurrency policy for cache misses.
func (l *Loader) WithPolicy(p LoadPolicy) *Loader {
	if p != nil {
		l.policy = p
	}
	return l
}

// WithRecognizer replaces the script recognizer.
func (l *Loader) WithRecognizer(r cipher.Recognizer) *Loader {
	if r != nil {
		l.recognizer = r
	}
	return l
}

// WithStore enables a persistent second tier. nil disables it.
func (l *Loader) WithStore(s Store) *Loader {
	l.store = s
	return l
}

// WithVerifier enables cross-checking of new extractions. nil disables it.
func (l *Loader) WithVerifier(v cipher.Verifier) *Loader {
	l.verifier = v
	return l
}

// WithScriptHost sets the host used for host-relative script identities.
func (l *Loader) WithScriptHost(host string) *Loader {
	if host != "" {
		l.scriptHost = host
	}
	return l
}

// WithMeter records loader metrics on meter.
func (l *Loader) WithMeter(meter metric.Meter) *Loader {
	if meter == nil {
		return l
	}
	m, err := newLoaderMetrics(meter)
	if err != nil {
		l.logger().Warn("Metrics disabled", map[string]interface{}{"error": err.Error()})
		return l
	}
	l.metrics = m
	return l
}

// WithTracer records a span per script load on tracer.
func (l *Loader) WithTracer(tracer trace.Tracer) *Loader {
	if tracer != nil {
		l.tracer = tracer
	}
	return l
}

// WithLogger sets the logger. By default the global logger is used.
func (l *Loader) WithLogger(log *logger.ComponentLogger) *Loader {
	l.log = log
	return l
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

func (l *Loader) logger() *logger.ComponentLogger {
	if l.log != nil {
		return l.log
	}
	return logger.WithComponent(logger.ComponentPlayer)
}

// Cipher returns the cipher for the script identified by identity. A cached
// cipher is returned without any I/O. Otherwise the script is loaded inside
// the load policy; failures are returned as *cipher.Error and leave the cache
// untouched.
func (l *Loader) Cipher(ctx context.Context, identity string) (*cipher.Cipher, error) {
	if c, ok := l.cache.Get(identity); ok {
		l.metrics.hits.Add(ctx, 1)
		return c, nil
	}
	l.metrics.misses.Add(ctx, 1)

	return l.policy.Do(identity, func() (*cipher.Cipher, error) {
		// another caller may have finished the load while we waited
		if c, ok := l.cache.Get(identity); ok {
			return c, nil
		}
		if l.store != nil {
			if c, ok := l.store.Get(identity); ok {
				l.logger().Debug("Cipher restored from store", map[string]interface{}{"script": identity})
				return l.cache.Store(identity, c), nil
			}
		}

		c, err := l.load(ctx, identity)
		if err != nil {
			return nil, err
		}
		c = l.cache.Store(identity, c)

		if l.store != nil {
			if err := l.store.Put(identity, c); err != nil {
				l.logger().Warn("Failed to persist cipher", map[string]interface{}{
					"script": identity,
					"error":  err.Error(),
				})
			}
		}
		return c, nil
	})
}

func (l *Loader) load(ctx context.Context, identity string) (c *cipher.Cipher, err error) {
	scriptURL := ResolveScriptURL(identity, l.scriptHost)
	ctx, span := l.tracer.Start(ctx, "player.load", trace.WithAttributes(
		attribute.String("player.script", identity),
		attribute.String("url.full", scriptURL),
	))
	start := time.Now()
	defer func() {
		l.metrics.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
		if err != nil {
			l.metrics.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.code", cipher.Code(err))))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			l.logger().Error("Failed to load cipher", map[string]interface{}{
				"script": identity,
				"error":  err.Error(),
			})
		}
		span.End()
	}()

	script, err := l.fetch(ctx, scriptURL)
	if err != nil {
		return nil, err
	}

	x, err := l.recognizer.Extract(script)
	if err != nil {
		return nil, err
	}
	// a recognizer that finds nothing may return no extraction at all
	if x == nil || x.Cipher == nil {
		var found cipher.Extraction
		if x != nil {
			found = *x
		}
		found.Cipher = cipher.NewCipher()
		x = &found
	}

	if x.Cipher.Empty() {
		l.metrics.empty.Add(ctx, 1)
		l.logger().Warn("No operations detected", map[string]interface{}{"script": identity})
	}
	if l.verifier != nil {
		if verr := l.verifier.Verify(x); verr != nil {
			l.metrics.verifyMismatch.Add(ctx, 1)
			l.logger().Warn("Cipher verification failed", map[string]interface{}{
				"script": identity,
				"error":  verr.Error(),
			})
		}
	}

	span.SetAttributes(attribute.Int("cipher.operations", x.Cipher.Len()))
	l.logger().Debug("Loaded cipher", map[string]interface{}{
		"script":     identity,
		"operations": x.Cipher.String(),
	})
	return x.Cipher, nil
}

// fetch performs the single GET for a script. Anything but a 200 response is
// a network error.
func (l *Loader) fetch(ctx context.Context, scriptURL string) (string, error) {
	if l.fetcher == nil {
		return "", cipher.NewError(cipher.ErrCodeScriptDownload, "no fetcher configured")
	}
	l.metrics.fetches.Add(ctx, 1)

	resp, err := l.fetcher.Get(ctx, scriptURL)
	if err == nil && resp == nil {
		err = errors.New("fetcher returned no response")
	}
	if err != nil {
		e := cipher.Wrap(cipher.ErrCodeScriptDownload, "failed to download player script", err)
		e.Details = map[string]any{"url": scriptURL}
		return "", e
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", cipher.NewError(cipher.ErrCodeScriptStatus, "received non-success response code", map[string]any{
			"url":    scriptURL,
			"status": resp.StatusCode,
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e := cipher.Wrap(cipher.ErrCodeScriptDownload, "failed to read player script", err)
		e.Details = map[string]any{"url": scriptURL}
		return "", e
	}
	return string(body), nil
}
