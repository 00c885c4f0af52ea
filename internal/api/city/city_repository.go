package city

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/gezi-ai/app/observability/metrics"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

const opFetchTopCities = "city directory: fetch top cities"

var _ Repository = (*NinjaCityRepository)(nil)

// Repository is the city directory: a fixed-size batch of high-population cities.
type Repository interface {
	FetchTopCities(ctx context.Context) ([]types.City, error)
}

// DirectoryConfig configures NinjaCityRepository.
type DirectoryConfig struct {
	BaseURL       string
	APIKey        string
	MinPopulation int64
	Limit         int
}

// NinjaCityRepository reads cities from the API Ninjas /v1/city endpoint.
type NinjaCityRepository struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        DirectoryConfig
}

func NewCityRepository(cfg DirectoryConfig, httpClient *http.Client, logger *slog.Logger) *NinjaCityRepository {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &NinjaCityRepository{
		logger:     logger,
		httpClient: httpClient,
		cfg:        cfg,
	}
}

type ninjaCity struct {
	Name       string  `json:"name"`
	Country    string  `json:"country"`
	Population int64   `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// FetchTopCities returns at most cfg.Limit cities with population >= cfg.MinPopulation, in
// upstream order. The threshold is sent upstream as min_population and checked again here;
// rows that slip through are dropped.
func (r *NinjaCityRepository) FetchTopCities(ctx context.Context) ([]types.City, error) {
	ctx, span := otel.Tracer("CityRepository").Start(ctx, "FetchTopCities", trace.WithAttributes(
		attribute.Int64("city.min_population", r.cfg.MinPopulation),
		attribute.Int("city.limit", r.cfg.Limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "FetchTopCities"))
	start := time.Now()

	q := url.Values{}
	q.Set("min_population", strconv.FormatInt(r.cfg.MinPopulation, 10))
	q.Set("limit", strconv.Itoa(r.cfg.Limit))
	endpoint := r.cfg.BaseURL + "/v1/city?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build request")
		return nil, fmt.Errorf("failed to build city directory request: %w", err)
	}
	req.Header.Set("X-Api-Key", r.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamCityDirectory, "transport_error", time.Since(start))
		l.ErrorContext(ctx, "City directory request failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &types.NetworkError{Op: opFetchTopCities, URL: r.cfg.BaseURL + "/v1/city", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamCityDirectory, "bad_status", time.Since(start))
		l.ErrorContext(ctx, "City directory returned non-success status", slog.Int("status", resp.StatusCode))
		span.SetStatus(codes.Error, "non-success status")
		return nil, &types.NetworkError{Op: opFetchTopCities, URL: r.cfg.BaseURL + "/v1/city", StatusCode: resp.StatusCode}
	}

	var rows []ninjaCity
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		metrics.Get().RecordUpstream(ctx, metrics.UpstreamCityDirectory, "decode_error", time.Since(start))
		l.ErrorContext(ctx, "Failed to decode city directory response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, &types.EmptyResultError{Op: opFetchTopCities, Reason: err.Error()}
	}
	metrics.Get().RecordUpstream(ctx, metrics.UpstreamCityDirectory, "ok", time.Since(start))

	cities := make([]types.City, 0, min(len(rows), r.cfg.Limit))
	dropped := 0
	for _, row := range rows {
		if row.Population < r.cfg.MinPopulation || strings.TrimSpace(row.Name) == "" {
			dropped++
			continue
		}
		if len(cities) == r.cfg.Limit {
			dropped++
			continue
		}
		cities = append(cities, types.City{
			Name:       row.Name,
			Country:    row.Country,
			Population: row.Population,
			Latitude:   row.Latitude,
			Longitude:  row.Longitude,
		})
	}
	if dropped > 0 {
		l.WarnContext(ctx, "Dropped city directory rows outside the requested batch",
			slog.Int("dropped", dropped), slog.Int64("min_population", r.cfg.MinPopulation))
	}

	span.SetAttributes(attribute.Int("city.count", len(cities)))
	span.SetStatus(codes.Ok, "Cities fetched")
	l.DebugContext(ctx, "Fetched top cities", slog.Int("count", len(cities)))
	return cities, nil
}
