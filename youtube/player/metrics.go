package player

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instrumentation scope used for the loader's meter and tracer.
const instrumentationName = "github.com/ytget/ytcipher/youtube/player"

// Metric names.
const (
	MetricCacheHits      = "ytcipher.cache.hits"
	MetricCacheMisses    = "ytcipher.cache.misses"
	MetricScriptFetches  = "ytcipher.script.fetches"
	MetricLoadErrors     = "ytcipher.load.errors"
	MetricEmptyCipher    = "ytcipher.cipher.empty"
	MetricVerifyMismatch = "ytcipher.cipher.verify_mismatch"
	MetricLoadDuration   = "ytcipher.load.duration_ms"
)

type loaderMetrics struct {
	hits           metric.Int64Counter
	misses         metric.Int64Counter
	fetches        metric.Int64Counter
	errors         metric.Int64Counter
	empty          metric.Int64Counter
	verifyMismatch metric.Int64Counter
	duration       metric.Float64Histogram
}

func newLoaderMetrics(meter metric.Meter) (*loaderMetrics, error) {
	m := &loaderMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.hits, MetricCacheHits, "Cipher lookups served from the cache", "{lookup}"},
		{&m.misses, MetricCacheMisses, "Cipher lookups that entered the load section", "{lookup}"},
		{&m.fetches, MetricScriptFetches, "Player script fetches", "{request}"},
		{&m.errors, MetricLoadErrors, "Failed cipher loads", "{error}"},
		{&m.empty, MetricEmptyCipher, "Loads that recognized no operations", "{load}"},
		{&m.verifyMismatch, MetricVerifyMismatch, "Loads whose cipher disagreed with the script engine", "{load}"},
	}
	for _, c := range counters {
		ctr, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.dst = ctr
	}

	duration, err := meter.Float64Histogram(
		MetricLoadDuration,
		metric.WithDescription("Player script fetch and parse duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.duration = duration
	return m, nil
}

func noopLoaderMetrics() *loaderMetrics {
	m, _ := newLoaderMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}
