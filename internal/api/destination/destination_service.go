package destination

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/gezi-ai/app/observability/metrics"
	"github.com/FACorreiaa/gezi-ai/internal/api/city"
	"github.com/FACorreiaa/gezi-ai/internal/api/encyclopedia"
	generativeAI "github.com/FACorreiaa/gezi-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/gezi-ai/internal/api/image"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

const defaultImageConcurrency = 6

var _ Service = (*ServiceImpl)(nil)
var _ city.Lister = (*ServiceImpl)(nil)

// Service aggregates the per-place upstream lookups and owns the city listing.
type Service interface {
	Aggregate(ctx context.Context, place string) (*types.DestinationRecord, error)
	ListCities(ctx context.Context) ([]types.CityCard, error)
	InvalidateCities()
}

// ServiceConfig tunes ServiceImpl.
type ServiceConfig struct {
	DefaultImageURL  string
	ImageConcurrency int
}

type ServiceImpl struct {
	logger       *slog.Logger
	directory    city.Repository
	images       image.Finder
	encyclopedia encyclopedia.Reader
	narrator     generativeAI.Narrator
	listing      *ListingCache
	cfg          ServiceConfig

	fillMu sync.Mutex
}

func NewDestinationService(
	directory city.Repository,
	images image.Finder,
	wiki encyclopedia.Reader,
	narrator generativeAI.Narrator,
	listing *ListingCache,
	cfg ServiceConfig,
	logger *slog.Logger,
) *ServiceImpl {
	if cfg.ImageConcurrency <= 0 {
		cfg.ImageConcurrency = defaultImageConcurrency
	}
	return &ServiceImpl{
		logger:       logger,
		directory:    directory,
		images:       images,
		encyclopedia: wiki,
		narrator:     narrator,
		listing:      listing,
		cfg:          cfg,
	}
}

// Aggregate looks up the image, narrative and encyclopedia summary for place concurrently and
// merges them. Sub-lookups degrade to fallbacks on their own, so the only errors are an invalid
// place and a panic inside one of the lookups.
func (s *ServiceImpl) Aggregate(ctx context.Context, place string) (*types.DestinationRecord, error) {
	ctx, span := otel.Tracer("DestinationService").Start(ctx, "Aggregate", trace.WithAttributes(
		attribute.String("place", place),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Aggregate"))
	start := time.Now()

	place, err := ValidatePlace(place)
	if err != nil {
		l.WarnContext(ctx, "Rejected place", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid place")
		return nil, err
	}
	l = l.With(slog.String("place", place))

	var (
		imageURL  string
		narrative types.Narrative
		summary   *types.EncyclopediaSummary
	)

	// no shared cancel: every lookup runs to completion
	var g errgroup.Group
	g.Go(guard("image lookup", func() {
		imageURL = s.images.CityImage(ctx, place)
	}))
	g.Go(guard("narrative generation", func() {
		narrative = s.narrator.DestinationInfo(ctx, place)
	}))
	g.Go(guard("encyclopedia lookup", func() {
		summary = s.encyclopedia.Summary(ctx, place)
	}))
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Aggregation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Aggregation failed")
		return nil, err
	}

	record := s.merge(ctx, place, imageURL, narrative, summary)

	metrics.Get().AggregationDuration.Record(ctx, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Bool("record.description_is_ai", record.DescriptionIsAI),
		attribute.Bool("record.has_wiki", record.WikiURL != ""),
		attribute.Int("record.missing_sections", len(record.MissingSections)),
	)
	span.SetStatus(codes.Ok, "Destination aggregated")
	l.InfoContext(ctx, "Destination aggregated",
		slog.Bool("description_is_ai", record.DescriptionIsAI),
		slog.Int("missing_sections", len(record.MissingSections)),
		slog.Duration("took", time.Since(start)))
	return record, nil
}

func (s *ServiceImpl) merge(ctx context.Context, place, imageURL string, narrative types.Narrative, summary *types.EncyclopediaSummary) *types.DestinationRecord {
	l := s.logger.With(slog.String("method", "merge"), slog.String("place", place))

	record := &types.DestinationRecord{
		Place:           place,
		Country:         UnknownCountry,
		ImageURL:        imageURL,
		Description:     narrative.Text,
		DescriptionIsAI: !narrative.Fallback,
		Slug:            Slug(place),
	}

	if country, ok := s.listing.Country(place); ok {
		record.Country = country
	}

	if summary != nil {
		record.WikiURL = summary.URL
		record.WikiExtract = summary.Extract
		record.WikiThumbnail = summary.Thumbnail
		if (record.ImageURL == "" || record.ImageURL == s.cfg.DefaultImageURL) && summary.Thumbnail != "" {
			record.ImageURL = summary.Thumbnail
		}
	}
	if record.ImageURL == "" {
		record.ImageURL = s.cfg.DefaultImageURL
	}

	parsed := ParseNarrative(narrative.Text)
	record.Preamble = parsed.Preamble
	record.History = parsed.Section(types.SlotHistory)
	record.BestTimeToVisit = parsed.Section(types.SlotBestTimeToVisit)
	record.Attractions = parsed.Section(types.SlotAttractions)
	record.LocalFood = parsed.Section(types.SlotLocalFood)
	record.Transportation = parsed.Section(types.SlotTransportation)
	record.Festivals = parsed.Section(types.SlotFestivals)

	for _, miss := range parsed.Misses {
		record.MissingSections = append(record.MissingSections, miss.Slot)
		if narrative.Fallback {
			continue
		}
		metrics.Get().RecordSectionMiss(ctx, string(miss.Slot))
		l.DebugContext(ctx, "Narrative section missing", slog.Any("error", miss))
	}

	if record.Attractions != nil && len(record.Attractions.Items) > 0 {
		record.Highlights = record.Attractions.Items
	} else {
		record.Highlights = DefaultHighlights
	}
	return record
}

// guard runs fn and turns a panic into an error for the errgroup.
func guard(op string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v\n%s", op, r, debug.Stack())
			}
		}()
		fn()
		return nil
	}
}

// ListCities returns the city grid, serving it from the listing cache when possible. A miss
// fetches the directory and looks up one image per city with bounded concurrency.
func (s *ServiceImpl) ListCities(ctx context.Context) ([]types.CityCard, error) {
	ctx, span := otel.Tracer("DestinationService").Start(ctx, "ListCities")
	defer span.End()

	l := s.logger.With(slog.String("method", "ListCities"))

	if cards, ok := s.listing.Get(); ok {
		metrics.Get().RecordListingCache(ctx, true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "Listing served from cache")
		return cards, nil
	}

	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	// another request may have filled it while we waited
	if cards, ok := s.listing.Get(); ok {
		metrics.Get().RecordListingCache(ctx, true)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "Listing served from cache")
		return cards, nil
	}
	metrics.Get().RecordListingCache(ctx, false)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	cities, err := s.directory.FetchTopCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch city directory", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Directory fetch failed")
		return nil, err
	}

	cards := make([]types.CityCard, len(cities))
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.ImageConcurrency)
	for i, c := range cities {
		g.Go(guard("card image lookup", func() {
			cards[i] = newCityCard(c, s.images.CityImage(ctx, c.Name))
		}))
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to build city cards", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card build failed")
		return nil, err
	}

	s.listing.Set(cards)
	span.SetAttributes(attribute.Int("cities.count", len(cards)))
	span.SetStatus(codes.Ok, "Listing built")
	l.InfoContext(ctx, "City listing built", slog.Int("count", len(cards)), slog.Duration("ttl", s.listing.TTL))
	return cards, nil
}

// InvalidateCities drops the cached listing.
func (s *ServiceImpl) InvalidateCities() {
	s.listing.Invalidate()
}
