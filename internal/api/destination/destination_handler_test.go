package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

type MockLookupRunner struct {
	mock.Mock
}

func (m *MockLookupRunner) StartLookup(ctx context.Context, place string) (types.Lookup, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(types.Lookup), args.Error(1)
}

func (m *MockLookupRunner) GetLookup(id uuid.UUID) (types.Lookup, error) {
	args := m.Called(id)
	return args.Get(0).(types.Lookup), args.Error(1)
}

func setupHandlerTest() (http.Handler, *MockAggregator, *MockLookupRunner) {
	agg := new(MockAggregator)
	runner := new(MockLookupRunner)
	h := NewDestinationHandler(agg, runner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Get("/destinations/{cityName}", h.GetDestination)
	r.Post("/lookups", h.StartLookup)
	r.Get("/lookups/{lookupID}", h.GetLookup)
	return r, agg, runner
}

func TestHandler_GetDestination(t *testing.T) {
	t.Run("unescapes the place", func(t *testing.T) {
		r, agg, _ := setupHandlerTest()
		agg.On("Aggregate", mock.Anything, "são paulo").Return(&types.DestinationRecord{Place: "são paulo"}, nil).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/destinations/s%C3%A3o%20paulo", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var got types.DestinationRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "são paulo", got.Place)
		agg.AssertExpectations(t)
	})

	t.Run("invalid place", func(t *testing.T) {
		r, agg, _ := setupHandlerTest()
		agg.On("Aggregate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: too long", types.ErrInvalidPlace)).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/destinations/x", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_StartLookup(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		r, _, runner := setupHandlerTest()
		lookup := types.Lookup{ID: uuid.New(), Place: "Paris", State: types.LookupLoading}
		runner.On("StartLookup", mock.Anything, "Paris").Return(lookup, nil).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(`{"place":" Paris "}`)))

		require.Equal(t, http.StatusAccepted, rr.Code)
		var got types.Lookup
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, lookup.ID, got.ID)
		assert.Equal(t, types.LookupLoading, got.State)
		runner.AssertExpectations(t)
	})

	for name, body := range map[string]string{
		"empty place":   `{"place":"  "}`,
		"bad json":      `{"place":`,
		"unknown field": `{"city":"Paris"}`,
	} {
		t.Run(name, func(t *testing.T) {
			r, _, runner := setupHandlerTest()

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/lookups", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			runner.AssertNotCalled(t, "StartLookup", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_GetLookup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, _, runner := setupHandlerTest()
		id := uuid.New()
		runner.On("GetLookup", id).Return(types.Lookup{ID: id, State: types.LookupSuccess}, nil).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/lookups/"+id.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"state":"success"`)
	})

	t.Run("not found", func(t *testing.T) {
		r, _, runner := setupHandlerTest()
		id := uuid.New()
		runner.On("GetLookup", id).Return(types.Lookup{}, ErrLookupNotFound).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/lookups/"+id.String(), nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		r, _, _ := setupHandlerTest()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/lookups/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
