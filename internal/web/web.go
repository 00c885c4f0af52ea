package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/gezi-ai/internal/api"
	"github.com/FACorreiaa/gezi-ai/internal/api/city"
	"github.com/FACorreiaa/gezi-ai/internal/api/destination"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// Localized messages shown in place of content that could not be loaded.
const (
	MsgCitiesFailed = "Şehir bilgileri yüklenirken bir hata oluştu."
	MsgSearchFailed = "Bilgiler alınırken bir hata oluştu. Lütfen tekrar deneyin."
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// cardView is what the "card" template renders.
type cardView struct {
	Name        string
	Country     string
	ImageURL    string
	Description string
	WikiURL     string
	Slug        string
}

type homePage struct {
	Title       string
	Query       string
	Popular     []destination.PopularDestination
	Cities      []types.CityCard
	CitiesError string
	Result      *types.DestinationRecord
	SearchError string
}

type detailPage struct {
	Title  string
	Record *types.DestinationRecord
	Error  string
}

var funcs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
	"cityCard": func(c types.CityCard) cardView {
		return cardView{Name: c.Name, Country: c.Country, ImageURL: c.ImageURL, Description: c.Description, Slug: c.Slug}
	},
	"popularCard": func(p destination.PopularDestination) cardView {
		return cardView{Name: p.City, Country: p.Country, ImageURL: p.ImageURL, Description: p.Description, Slug: destination.Slug(p.City)}
	},
	"resultCard": func(r *types.DestinationRecord) cardView {
		return cardView{Name: r.Place, Country: r.Country, ImageURL: r.ImageURL, Description: r.Description, WikiURL: r.WikiURL, Slug: r.Slug}
	},
}

// Handler renders the HTML pages.
type Handler struct {
	logger     *slog.Logger
	lister     city.Lister
	aggregator destination.Aggregator
	tmpl       *template.Template
}

func NewWebHandler(lister city.Lister, aggregator destination.Aggregator, logger *slog.Logger) (*Handler, error) {
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger:     logger,
		lister:     lister,
		aggregator: aggregator,
		tmpl:       tmpl,
	}, nil
}

// Static serves the embedded CSS and images under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// Home renders the landing page with the popular destinations and the city grid.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WebHandler").Start(r.Context(), "Home")
	defer span.End()

	page := homePage{Title: "Dünya Şehirlerini Keşfet", Popular: destination.PopularDestinations}
	cities, err := h.lister.ListCities(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load city grid", slog.Any("error", err))
		span.RecordError(err)
		page.CitiesError = MsgCitiesFailed
	}
	page.Cities = cities

	span.SetStatus(codes.Ok, "Home rendered")
	h.render(w, r, http.StatusOK, "home", page)
}

// Search renders the landing page with the aggregated result for ?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		h.Home(w, r)
		return
	}

	ctx, span := otel.Tracer("WebHandler").Start(r.Context(), "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", q))

	page := homePage{Title: q, Query: q, Popular: destination.PopularDestinations}
	record, err := h.aggregator.Aggregate(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "Search failed", slog.String("query", q), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		page.SearchError = MsgSearchFailed
		h.render(w, r, api.StatusForError(err), "home", page)
		return
	}
	page.Result = record

	span.SetStatus(codes.Ok, "Search rendered")
	h.render(w, r, http.StatusOK, "home", page)
}

// Destination renders the detail page for /destination/{cityName}.
func (h *Handler) Destination(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("WebHandler").Start(r.Context(), "Destination")
	defer span.End()

	place := destination.PlaceParam(r)
	span.SetAttributes(attribute.String("place", place))

	record, err := h.aggregator.Aggregate(ctx, place)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load destination", slog.String("place", place), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Destination failed")
		h.render(w, r, api.StatusForError(err), "detail", detailPage{Title: place, Error: MsgCitiesFailed})
		return
	}

	span.SetStatus(codes.Ok, "Destination rendered")
	h.render(w, r, http.StatusOK, "detail", detailPage{Title: record.Place, Record: record})
}

// render buffers the page and writes the status only once execution succeeded.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write page", slog.Any("error", err))
	}
}
