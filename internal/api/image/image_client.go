package image

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/gezi-ai/app/observability/metrics"
)

// maxCandidates is how many of the leading hits are eligible for selection.
const maxCandidates = 3

var _ Finder = (*PixabayClient)(nil)

// Finder returns a display image URL for a place. It never fails.
type Finder interface {
	CityImage(ctx context.Context, place string) string
}

// SearchConfig configures PixabayClient.
type SearchConfig struct {
	BaseURL         string
	APIKey          string
	DefaultImageURL string
}

// PixabayClient looks up landmark photos on the Pixabay search API.
type PixabayClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        SearchConfig

	mu   sync.Mutex
	rand *rand.Rand
}

// Option customizes a PixabayClient.
type Option func(*PixabayClient)

// WithRand sets the random source used to pick among the leading hits.
func WithRand(r *rand.Rand) Option {
	return func(c *PixabayClient) {
		c.rand = r
	}
}

func NewPixabayClient(cfg SearchConfig, httpClient *http.Client, logger *slog.Logger, opts ...Option) *PixabayClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &PixabayClient{
		logger:     logger,
		httpClient: httpClient,
		cfg:        cfg,
		rand:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Hits []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

// DefaultImageURL is the placeholder returned when no photo could be found.
func (c *PixabayClient) DefaultImageURL() string {
	return c.cfg.DefaultImageURL
}

// CityImage searches for "<place> city landmark" and returns the web-format URL of one of the
// first three hits, chosen at random. Any failure yields the configured placeholder.
func (c *PixabayClient) CityImage(ctx context.Context, place string) string {
	ctx, span := otel.Tracer("ImageClient").Start(ctx, "CityImage", trace.WithAttributes(
		attribute.String("place", place),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "CityImage"), slog.String("place", place))
	start := time.Now()

	fallback := func(outcome string, err error) string {
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamImageSearch, outcome, time.Since(start))
		metrics.Get().RecordFallback(ctx, metrics.UpstreamImageSearch)
		if err != nil {
			span.RecordError(err)
			l.WarnContext(ctx, "Image search failed, using placeholder", slog.String("outcome", outcome), slog.Any("error", err))
		} else {
			l.WarnContext(ctx, "Image search failed, using placeholder", slog.String("outcome", outcome))
		}
		span.SetStatus(codes.Error, outcome)
		return c.cfg.DefaultImageURL
	}

	q := url.Values{}
	q.Set("key", c.cfg.APIKey)
	q.Set("q", place+" city landmark")
	q.Set("image_type", "photo")
	q.Set("orientation", "horizontal")
	q.Set("per_page", "3")
	q.Set("category", "places")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/?"+q.Encode(), nil)
	if err != nil {
		return fallback("request_error", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback("transport_error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fallback("bad_status", nil)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fallback("decode_error", err)
	}
	if len(body.Hits) == 0 {
		return fallback("no_hits", nil)
	}

	n := min(maxCandidates, len(body.Hits))
	c.mu.Lock()
	pick := c.rand.IntN(n)
	c.mu.Unlock()

	imageURL := body.Hits[pick].WebformatURL
	if imageURL == "" {
		return fallback("empty_url", nil)
	}

	metrics.Get().RecordUpstream(ctx, metrics.UpstreamImageSearch, "ok", time.Since(start))
	span.SetAttributes(attribute.Int("image.hits", len(body.Hits)), attribute.Int("image.pick", pick))
	span.SetStatus(codes.Ok, "Image found")
	l.DebugContext(ctx, "Image found", slog.Int("hits", len(body.Hits)), slog.Int("pick", pick))
	return imageURL
}
