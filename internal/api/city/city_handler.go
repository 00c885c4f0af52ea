package city

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/gezi-ai/internal/api"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// Lister serves the cached city listing. The aggregation layer implements it.
type Lister interface {
	ListCities(ctx context.Context) ([]types.CityCard, error)
	InvalidateCities()
}

type Handler struct {
	logger *slog.Logger
	lister Lister
}

func NewCityHandler(lister Lister, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		lister: lister,
	}
}

// GetTopCities godoc
// @Summary      List the curated city grid
// @Description  Returns the high-population city batch with one card image per city.
// @Tags         cities
// @Produce      json
// @Success      200  {array}   types.CityCard
// @Failure      502  {object}  api.Response
// @Router       /cities [get]
func (h *Handler) GetTopCities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CityHandler").Start(r.Context(), "GetTopCities")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetTopCities"))

	cards, err := h.lister.ListCities(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to retrieve cities", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Listing failed")
		api.ErrorResponse(w, r, api.StatusForError(err), "Failed to retrieve cities")
		return
	}

	l.InfoContext(ctx, "Successfully returned cities", slog.Int("count", len(cards)))
	span.SetStatus(codes.Ok, "Cities returned successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, cards)
}

// InvalidateCache godoc
// @Summary      Drop the cached city listing
// @Tags         cities
// @Success      204
// @Router       /cities/cache [delete]
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.lister.InvalidateCities()
	h.logger.InfoContext(r.Context(), "City listing cache invalidated")
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
