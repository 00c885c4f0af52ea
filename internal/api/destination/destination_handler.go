package destination

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/gezi-ai/internal/api"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

// LookupRunner starts and reports background lookups.
type LookupRunner interface {
	StartLookup(ctx context.Context, place string) (types.Lookup, error)
	GetLookup(id uuid.UUID) (types.Lookup, error)
}

var _ LookupRunner = (*Lookups)(nil)

type Handler struct {
	logger     *slog.Logger
	aggregator Aggregator
	lookups    LookupRunner
}

func NewDestinationHandler(aggregator Aggregator, lookups LookupRunner, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		aggregator: aggregator,
		lookups:    lookups,
	}
}

// PlaceParam returns the unescaped {cityName} path parameter.
func PlaceParam(r *http.Request) string {
	raw := chi.URLParam(r, "cityName")
	if place, err := url.PathUnescape(raw); err == nil {
		return place
	}
	return raw
}

// GetDestination godoc
// @Summary      Aggregate a destination
// @Description  Looks up image, narrative and encyclopedia summary for a place and merges them.
// @Tags         destinations
// @Produce      json
// @Param        cityName  path      string  true  "Place name"
// @Success      200       {object}  types.DestinationRecord
// @Failure      400       {object}  api.Response
// @Failure      500       {object}  api.Response
// @Router       /destinations/{cityName} [get]
func (h *Handler) GetDestination(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DestinationHandler").Start(r.Context(), "GetDestination")
	defer span.End()

	place := PlaceParam(r)
	l := h.logger.With(slog.String("handler", "GetDestination"), slog.String("place", place))

	record, err := h.aggregator.Aggregate(ctx, place)
	if err != nil {
		l.ErrorContext(ctx, "Failed to aggregate destination", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Aggregation failed")
		api.ErrorResponse(w, r, api.StatusForError(err), err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Destination returned")
	api.WriteJSONResponse(w, r, http.StatusOK, record)
}

// StartLookup godoc
// @Summary      Start a background destination lookup
// @Tags         lookups
// @Accept       json
// @Produce      json
// @Param        request  body      types.StartLookupRequest  true  "Place to look up"
// @Success      202      {object}  types.Lookup
// @Failure      400      {object}  api.Response
// @Router       /lookups [post]
func (h *Handler) StartLookup(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DestinationHandler").Start(r.Context(), "StartLookup")
	defer span.End()

	l := h.logger.With(slog.String("handler", "StartLookup"))

	var req types.StartLookupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid lookup request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	place, err := ValidatePlace(req.Place)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid place")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	lookup, err := h.lookups.StartLookup(ctx, place)
	if err != nil {
		l.ErrorContext(ctx, "Failed to start lookup", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Start failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to start lookup")
		return
	}

	span.SetAttributes(attribute.String("lookup.id", lookup.ID.String()))
	span.SetStatus(codes.Ok, "Lookup started")
	l.InfoContext(ctx, "Lookup started", slog.String("lookup_id", lookup.ID.String()), slog.String("place", place))
	api.WriteJSONResponse(w, r, http.StatusAccepted, lookup)
}

// GetLookup godoc
// @Summary      Get a destination lookup
// @Tags         lookups
// @Produce      json
// @Param        lookupID  path      string  true  "Lookup ID"
// @Success      200       {object}  types.Lookup
// @Failure      400       {object}  api.Response
// @Failure      404       {object}  api.Response
// @Router       /lookups/{lookupID} [get]
func (h *Handler) GetLookup(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DestinationHandler").Start(r.Context(), "GetLookup")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "lookupID"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid lookup ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid lookup ID")
		return
	}

	lookup, err := h.lookups.GetLookup(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrLookupNotFound) {
			status = http.StatusNotFound
		}
		h.logger.WarnContext(ctx, "Lookup not available", slog.String("lookup_id", id.String()), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Lookup not available")
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Lookup returned")
	api.WriteJSONResponse(w, r, http.StatusOK, lookup)
}
