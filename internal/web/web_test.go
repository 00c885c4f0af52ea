package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/gezi-ai/internal/api/destination"
	"github.com/FACorreiaa/gezi-ai/internal/types"
)

type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListCities(ctx context.Context) ([]types.CityCard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CityCard), args.Error(1)
}

func (m *MockLister) InvalidateCities() {
	m.Called()
}

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, place string) (*types.DestinationRecord, error) {
	args := m.Called(ctx, place)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DestinationRecord), args.Error(1)
}

func setupWebTest(t *testing.T) (http.Handler, *MockLister, *MockAggregator) {
	t.Helper()
	lister := new(MockLister)
	agg := new(MockAggregator)
	h, err := NewWebHandler(lister, agg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/search", h.Search)
	r.Get("/destination/{cityName}", h.Destination)
	r.Handle("/static/*", Static())
	return r, lister, agg
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	return rr, doc
}

func TestHome_RendersGridAndPopular(t *testing.T) {
	h, lister, _ := setupWebTest(t)
	lister.On("ListCities", mock.Anything).Return([]types.CityCard{
		{
			City:        types.City{Name: "Tokyo", Country: "JP", Population: 37400000},
			ImageURL:    "https://cdn.example/tokyo.jpg",
			Description: "Tokyo, 37.400.000 nüfusuyla JP'nin önemli şehirlerinden biridir.",
			Slug:        "tokyo",
		},
	}, nil).Once()

	rr, doc := get(t, h, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Dünya Şehirlerini Keşfet", doc.Find(".hero h1").Text())
	assert.Equal(t, 3, doc.Find("#populer .card").Length())
	href, _ := doc.Find("#populer .card-link").First().Attr("href")
	assert.Equal(t, "/destination/istanbul", href)

	tokyo := doc.Find("#sehirler .card")
	require.Equal(t, 1, tokyo.Length())
	link, _ := tokyo.Find(".card-link").Attr("href")
	assert.Equal(t, "/destination/tokyo", link)
	assert.Contains(t, tokyo.Find(".card-body").Text(), "37.400.000 nüfusuyla")
	img, _ := tokyo.Find("img").Attr("src")
	assert.Equal(t, "https://cdn.example/tokyo.jpg", img)
}

func TestHome_CardLinkOpensDetail(t *testing.T) {
	h, lister, agg := setupWebTest(t)
	lister.On("ListCities", mock.Anything).Return([]types.CityCard{
		{City: types.City{Name: "Istanbul", Country: "TR"}, Slug: destination.Slug("Istanbul")},
	}, nil).Once()
	agg.On("Aggregate", mock.Anything, "istanbul").Return(&types.DestinationRecord{
		Place:       "istanbul",
		Description: "Istanbul, Boğaz'ın iki yakasına yayılır.",
	}, nil).Once()

	_, doc := get(t, h, "/")
	href, ok := doc.Find("#sehirler .card-link").First().Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/destination/istanbul", href)

	rr, detail := get(t, h, href)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, detail.Text(), "Boğaz'ın iki yakasına")
	agg.AssertExpectations(t)
}

func TestHome_ListingError(t *testing.T) {
	h, lister, _ := setupWebTest(t)
	lister.On("ListCities", mock.Anything).Return(nil, &types.NetworkError{Op: "fetch", StatusCode: 500}).Once()

	rr, doc := get(t, h, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, MsgCitiesFailed, doc.Find("#sehirler .error-message").Text())
	assert.Equal(t, 3, doc.Find("#populer .card").Length())
}

func TestSearch(t *testing.T) {
	t.Run("renders result card", func(t *testing.T) {
		h, _, agg := setupWebTest(t)
		agg.On("Aggregate", mock.Anything, "Paris").Return(&types.DestinationRecord{
			Place:       "Paris",
			Country:     "Belirlenecek",
			ImageURL:    "https://upload.example/paris.jpg",
			Description: "Paris, Işık Şehri.",
			WikiURL:     "https://tr.wikipedia.org/wiki/Paris",
			Slug:        "paris",
		}, nil).Once()

		rr, doc := get(t, h, "/search?q=Paris")

		require.Equal(t, http.StatusOK, rr.Code)
		card := doc.Find("#sonuc .card")
		require.Equal(t, 1, card.Length())
		assert.Equal(t, "Paris", card.Find("h3").Text())
		assert.Contains(t, card.Text(), "Belirlenecek")
		wiki, ok := card.Find("a.wiki-link").Attr("href")
		require.True(t, ok)
		assert.Equal(t, "https://tr.wikipedia.org/wiki/Paris", wiki)
		assert.Equal(t, 0, card.Find(".card-link .wiki-link").Length(), "wiki link must not be nested in the card link")
		assert.Equal(t, 0, doc.Find("#sehirler").Length())
		value, _ := doc.Find("input[name=q]").Attr("value")
		assert.Equal(t, "Paris", value)
	})

	t.Run("orchestration failure shows message", func(t *testing.T) {
		h, _, agg := setupWebTest(t)
		agg.On("Aggregate", mock.Anything, "Paris").Return(nil, fmt.Errorf("narrative generation panicked")).Once()

		rr, doc := get(t, h, "/search?q=Paris")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, MsgSearchFailed, doc.Find(".error-message").Text())
	})
}

func TestDestination_MissingLocalFoodStillRenders(t *testing.T) {
	h, _, agg := setupWebTest(t)
	agg.On("Aggregate", mock.Anything, "roma").Return(&types.DestinationRecord{
		Place:           "roma",
		Country:         "Italy",
		ImageURL:        "https://cdn.example/roma.jpg",
		Description:     "...",
		DescriptionIsAI: true,
		Preamble:        "Roma, ebedi şehir.",
		History:         &types.NarrativeSection{Slot: types.SlotHistory, Title: "Tarihçe", Body: "Antik Roma."},
		Attractions:     &types.NarrativeSection{Slot: types.SlotAttractions, Title: "Gezilecek Yerler", Body: "- Kolezyum", Items: []string{"Kolezyum"}},
		MissingSections: []types.SectionSlot{types.SlotLocalFood},
		Highlights:      []string{"Kolezyum"},
		Slug:            "roma",
	}, nil).Once()

	rr, doc := get(t, h, "/destination/roma")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "roma", doc.Find(".detail-hero h1").Text())
	assert.Equal(t, 2, doc.Find(".narrative-section").Length())
	assert.Equal(t, 0, doc.Find(`.narrative-section[data-slot="local_food"]`).Length())
	assert.Equal(t, "Antik Roma.", doc.Find(`.narrative-section[data-slot="history"] p`).Text())
	assert.Equal(t, 0, doc.Find(".wiki-link").Length())
	assert.Equal(t, "🗺️ Kolezyum", doc.Find(".highlights li").Text())
}

func TestDestination_NoSectionsShowsDescription(t *testing.T) {
	h, _, agg := setupWebTest(t)
	agg.On("Aggregate", mock.Anything, "atlantis").Return(&types.DestinationRecord{
		Place:       "atlantis",
		Country:     "Belirlenecek",
		ImageURL:    "/static/img/default-city.svg",
		Description: "atlantis için şu anda detaylı bilgi sağlanamıyor. Lütfen daha sonra tekrar deneyin.",
		Highlights:  []string{"🏛️ Tarihi Yerler ve Mimari"},
	}, nil).Once()

	rr, doc := get(t, h, "/destination/atlantis")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, doc.Find(".description").Text(), "detaylı bilgi sağlanamıyor")
	assert.Equal(t, 0, doc.Find(".narrative-section").Length())
}

func TestDestination_Error(t *testing.T) {
	h, _, agg := setupWebTest(t)
	agg.On("Aggregate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: too long", types.ErrInvalidPlace)).Once()

	rr, doc := get(t, h, "/destination/x")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgCitiesFailed, doc.Find(".error-message").Text())
	back, _ := doc.Find(".back-link").Attr("href")
	assert.Equal(t, "/", back)
	assert.Contains(t, doc.Find(".back-link").Text(), "Ana Sayfaya Dön")
}

func TestStatic(t *testing.T) {
	h, _, _ := setupWebTest(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/img/default-city.svg", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "<svg")
}
