package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/gezi-ai/docs"
	"github.com/FACorreiaa/gezi-ai/internal/api/city"
	"github.com/FACorreiaa/gezi-ai/internal/api/destination"
	"github.com/FACorreiaa/gezi-ai/internal/web"
)

// Config contains dependencies needed for the router setup
type Config struct {
	CityHandler        *city.Handler
	DestinationHandler *destination.Handler
	WebHandler         *web.Handler
	AllowedOrigins     []string
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// Heartbeat/Health check endpoint
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	// HTML pages
	r.Get("/", cfg.WebHandler.Home)
	r.Get("/search", cfg.WebHandler.Search)
	r.Get("/destination/{cityName}", cfg.WebHandler.Destination)
	r.Handle("/static/*", web.Static())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Link"},
			MaxAge:         300, // Maximum value not ignored by any major browsers
		}))

		r.Get("/cities", cfg.CityHandler.GetTopCities)
		r.Delete("/cities/cache", cfg.CityHandler.InvalidateCache)

		r.Get("/destinations/{cityName}", cfg.DestinationHandler.GetDestination)

		r.Post("/lookups", cfg.DestinationHandler.StartLookup)
		r.Get("/lookups/{lookupID}", cfg.DestinationHandler.GetLookup)
	})

	return r
}
