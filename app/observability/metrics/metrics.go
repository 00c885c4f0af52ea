package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Upstream names used as the "upstream" attribute.
const (
	UpstreamCityDirectory = "city_directory"
	UpstreamImageSearch   = "image_search"
	UpstreamEncyclopedia  = "encyclopedia"
	UpstreamNarrative     = "narrative"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamDurationSeconds metric.Float64Histogram
	FallbacksTotal          metric.Int64Counter
	SectionMissesTotal      metric.Int64Counter
	ListingCacheTotal       metric.Int64Counter
	AggregationDuration     metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider; instruments created
// before the provider is installed are delegated to it afterwards.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("GeziAI")
		var err error
		m := &AppMetrics{}

		m.UpstreamRequestsTotal, err = meter.Int64Counter(
			"upstream_requests_total",
			metric.WithDescription("Total number of upstream API calls by upstream and outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_requests_total: %v", err)
		}

		m.UpstreamDurationSeconds, err = meter.Float64Histogram(
			"upstream_duration_seconds",
			metric.WithDescription("Duration of upstream API calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_duration_seconds: %v", err)
		}

		m.FallbacksTotal, err = meter.Int64Counter(
			"fallbacks_total",
			metric.WithDescription("Total number of static fallback values substituted for failed upstream lookups"),
			metric.WithUnit("{fallback}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create fallbacks_total: %v", err)
		}

		m.SectionMissesTotal, err = meter.Int64Counter(
			"narrative_section_misses_total",
			metric.WithDescription("Total number of narrative sections the parser could not find"),
			metric.WithUnit("{section}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create narrative_section_misses_total: %v", err)
		}

		m.ListingCacheTotal, err = meter.Int64Counter(
			"listing_cache_lookups_total",
			metric.WithDescription("City listing cache lookups by result"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create listing_cache_lookups_total: %v", err)
		}

		m.AggregationDuration, err = meter.Float64Histogram(
			"aggregation_duration_seconds",
			metric.WithDescription("Duration of a full destination aggregation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create aggregation_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing the instruments on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// RecordUpstream records one upstream call. outcome is "ok" or a short failure reason.
func (m *AppMetrics) RecordUpstream(ctx context.Context, upstream, outcome string, took time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("upstream", upstream),
		attribute.String("outcome", outcome),
	)
	m.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	m.UpstreamDurationSeconds.Record(ctx, took.Seconds(), attrs)
}

func (m *AppMetrics) RecordFallback(ctx context.Context, upstream string) {
	m.FallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("upstream", upstream)))
}

func (m *AppMetrics) RecordSectionMiss(ctx context.Context, slot string) {
	m.SectionMissesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("slot", slot)))
}

func (m *AppMetrics) RecordListingCache(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ListingCacheTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
