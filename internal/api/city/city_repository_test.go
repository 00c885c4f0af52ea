package city

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gezi-ai/internal/types"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc, limit int) *NinjaCityRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCityRepository(DirectoryConfig{
		BaseURL:       srv.URL + "/",
		APIKey:        "ninja-key",
		MinPopulation: 1_000_000,
		Limit:         limit,
	}, srv.Client(), logger)
}

func TestFetchTopCities_SendsQueryAndKey(t *testing.T) {
	var gotPath, gotKey, gotMin, gotLimit string
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotMin = r.URL.Query().Get("min_population")
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[{"name":"Tokyo","country":"JP","population":37400000,"latitude":35.68,"longitude":139.69}]`)
	}, 30)

	cities, err := repo.FetchTopCities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v1/city", gotPath)
	assert.Equal(t, "ninja-key", gotKey)
	assert.Equal(t, "1000000", gotMin)
	assert.Equal(t, "30", gotLimit)
	require.Len(t, cities, 1)
	assert.Equal(t, types.City{Name: "Tokyo", Country: "JP", Population: 37400000, Latitude: 35.68, Longitude: 139.69}, cities[0])
}

func TestFetchTopCities_DoesNotTrustUpstreamFilter(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name":"Istanbul","country":"TR","population":15460000},
			{"name":"Bodrum","country":"TR","population":180000},
			{"name":"Ankara","country":"TR","population":5700000}
		]`)
	}, 30)

	cities, err := repo.FetchTopCities(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 2)
	for _, c := range cities {
		assert.NotEqual(t, "Bodrum", c.Name)
		assert.GreaterOrEqual(t, c.Population, int64(1_000_000))
	}
	assert.Equal(t, "Istanbul", cities[0].Name)
	assert.Equal(t, "Ankara", cities[1].Name)
}

func TestFetchTopCities_TruncatesToBatchSize(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name":"A","country":"X","population":2000000},
			{"name":"B","country":"X","population":2000000},
			{"name":"C","country":"X","population":2000000}
		]`)
	}, 2)

	cities, err := repo.FetchTopCities(context.Background())
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "A", cities[0].Name)
	assert.Equal(t, "B", cities[1].Name)
}

func TestFetchTopCities_Errors(t *testing.T) {
	t.Run("non-success status is a NetworkError", func(t *testing.T) {
		repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}, 30)

		cities, err := repo.FetchTopCities(context.Background())
		require.Error(t, err)
		assert.Nil(t, cities)
		var netErr *types.NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)
	})

	t.Run("unreachable upstream is a NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		repo := NewCityRepository(DirectoryConfig{BaseURL: srv.URL, MinPopulation: 1, Limit: 1},
			http.DefaultClient, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := repo.FetchTopCities(context.Background())
		var netErr *types.NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Zero(t, netErr.StatusCode)
		assert.NotNil(t, netErr.Unwrap())
	})

	t.Run("undecodable body is an EmptyResultError", func(t *testing.T) {
		repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":"quota"}`)
		}, 30)

		_, err := repo.FetchTopCities(context.Background())
		var emptyErr *types.EmptyResultError
		require.True(t, errors.As(err, &emptyErr))
	})
}
