package container

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/FACorreiaa/gezi-ai/config"
	"github.com/FACorreiaa/gezi-ai/internal/api/city"
	"github.com/FACorreiaa/gezi-ai/internal/api/destination"
	"github.com/FACorreiaa/gezi-ai/internal/api/encyclopedia"
	generativeAI "github.com/FACorreiaa/gezi-ai/internal/api/generative_ai"
	"github.com/FACorreiaa/gezi-ai/internal/api/image"
	"github.com/FACorreiaa/gezi-ai/internal/router"
	"github.com/FACorreiaa/gezi-ai/internal/web"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	Logger             *slog.Logger
	HTTPClient         *http.Client
	DestinationService *destination.ServiceImpl
	Lookups            *destination.Lookups
	CityHandler        *city.Handler
	DestinationHandler *destination.Handler
	WebHandler         *web.Handler
}

// Option customises the container before the services are built.
type Option func(*options)

type options struct {
	generator generativeAI.TextGenerator
}

// WithTextGenerator replaces the Gemini client used for narratives.
func WithTextGenerator(g generativeAI.TextGenerator) Option {
	return func(o *options) { o.generator = g }
}

// unavailableGenerator stands in for Gemini when no key is configured, so every
// narrative degrades to the fallback text.
type unavailableGenerator struct{}

func (unavailableGenerator) GenerateContent(context.Context, string, *genai.GenerateContentConfig) (string, error) {
	return "", generativeAI.ErrMissingAPIKey
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	// Shared client for every upstream, traced per request
	httpClient := &http.Client{
		Timeout:   cfg.Upstreams.HTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	up := cfg.Upstreams
	cityRepo := city.NewCityRepository(city.DirectoryConfig{
		BaseURL:       up.CityDirectory.BaseURL,
		APIKey:        up.CityDirectory.APIKey,
		MinPopulation: up.CityDirectory.MinPopulation,
		Limit:         up.CityDirectory.Limit,
	}, httpClient, logger)

	imageClient := image.NewPixabayClient(image.SearchConfig{
		BaseURL:         up.ImageSearch.BaseURL,
		APIKey:          up.ImageSearch.APIKey,
		DefaultImageURL: up.ImageSearch.DefaultImageURL,
	}, httpClient, logger)

	wikiClient := encyclopedia.NewWikipediaClient(up.Encyclopedia.BaseURL, httpClient, logger)

	generator := o.generator
	if generator == nil {
		aiClient, err := generativeAI.NewAIClient(ctx, generativeAI.ClientConfig{
			APIKey:     up.Gemini.APIKey,
			Model:      up.Gemini.Model,
			BaseURL:    up.Gemini.BaseURL,
			HTTPClient: httpClient,
		})
		switch {
		case errors.Is(err, generativeAI.ErrMissingAPIKey):
			logger.Warn("Gemini API key not set, narratives will use the fallback text")
			generator = unavailableGenerator{}
		case err != nil:
			logger.Error("Failed to initialize Gemini client", slog.Any("error", err))
			return nil, err
		default:
			generator = aiClient
		}
	}
	narrator := generativeAI.NewNarrativeGenerator(generator, up.Gemini.Temperature, logger)

	listing := destination.NewListingCache(cfg.Listing.CacheTTL)
	service := destination.NewDestinationService(cityRepo, imageClient, wikiClient, narrator, listing, destination.ServiceConfig{
		DefaultImageURL:  up.ImageSearch.DefaultImageURL,
		ImageConcurrency: cfg.Listing.ImageConcurrency,
	}, logger)

	lookups := destination.NewLookups(service, destination.NewLookupStore(cfg.Lookups.TTL), cfg.Server.Timeout, logger)

	webHandler, err := web.NewWebHandler(service, service, logger)
	if err != nil {
		logger.Error("Failed to parse page templates", slog.Any("error", err))
		return nil, err
	}

	return &Container{
		Config:             cfg,
		Logger:             logger,
		HTTPClient:         httpClient,
		DestinationService: service,
		Lookups:            lookups,
		CityHandler:        city.NewCityHandler(service, logger),
		DestinationHandler: destination.NewDestinationHandler(service, lookups, logger),
		WebHandler:         webHandler,
	}, nil
}

// Router builds the application routes from the container's handlers.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		CityHandler:        c.CityHandler,
		DestinationHandler: c.DestinationHandler,
		WebHandler:         c.WebHandler,
	})
}

// Close waits for background lookups to settle or for ctx to expire.
func (c *Container) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Lookups.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
