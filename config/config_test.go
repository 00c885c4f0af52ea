package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Setenv("PIXABAY_API_KEY", "pixabay-key")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "gemini-key")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "9090", cfg.Handlers.Prometheus.Port)
	assert.Equal(t, int64(1_000_000), cfg.Upstreams.CityDirectory.MinPopulation)
	assert.Equal(t, "https://tr.wikipedia.org/api/rest_v1", cfg.Upstreams.Encyclopedia.BaseURL)
	assert.InDelta(t, 0.7, cfg.Upstreams.Gemini.Temperature, 0.001)
	assert.Equal(t, 24*time.Hour, cfg.Listing.CacheTTL)

	assert.Equal(t, "pixabay-key", cfg.Upstreams.ImageSearch.APIKey)
	assert.Equal(t, "gemini-key", cfg.Upstreams.Gemini.APIKey)
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.Upstreams.HTTPTimeout)
	assert.Equal(t, 30, cfg.Upstreams.CityDirectory.Limit)
	assert.Equal(t, "/static/img/default-city.svg", cfg.Upstreams.ImageSearch.DefaultImageURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Upstreams.Gemini.Model)
	assert.Equal(t, 6, cfg.Listing.ImageConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.Lookups.TTL)

	cfg.Listing.ImageConcurrency = 2
	applyDefaults(&cfg)
	assert.Equal(t, 2, cfg.Listing.ImageConcurrency, "explicit values are kept")
}
