package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Upstreams Upstreams `mapstructure:"upstreams"`
	Listing   struct {
		CacheTTL         time.Duration `mapstructure:"cacheTTL"`
		ImageConcurrency int           `mapstructure:"imageConcurrency"`
	} `mapstructure:"listing"`
	Lookups struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"lookups"`
}

// Upstreams holds the settings of the external APIs the service aggregates.
type Upstreams struct {
	HTTPTimeout   time.Duration `mapstructure:"httpTimeout"`
	CityDirectory struct {
		BaseURL       string `mapstructure:"baseURL"`
		APIKey        string `mapstructure:"apiKey"`
		MinPopulation int64  `mapstructure:"minPopulation"`
		Limit         int    `mapstructure:"limit"`
	} `mapstructure:"cityDirectory"`
	ImageSearch struct {
		BaseURL         string `mapstructure:"baseURL"`
		APIKey          string `mapstructure:"apiKey"`
		DefaultImageURL string `mapstructure:"defaultImageURL"`
	} `mapstructure:"imageSearch"`
	Encyclopedia struct {
		BaseURL string `mapstructure:"baseURL"`
	} `mapstructure:"encyclopedia"`
	Gemini struct {
		APIKey      string  `mapstructure:"apiKey"`
		Model       string  `mapstructure:"model"`
		BaseURL     string  `mapstructure:"baseURL"`
		Temperature float32 `mapstructure:"temperature"`
	} `mapstructure:"gemini"`
}

// secretEnv maps config keys to the environment variables that carry the API keys.
var secretEnv = map[string]string{
	"upstreams.cityDirectory.apiKey": "NINJA_API_KEY",
	"upstreams.imageSearch.apiKey":   "PIXABAY_API_KEY",
	"upstreams.gemini.apiKey":        "GOOGLE_GEMINI_API_KEY",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range secretEnv {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&config)
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.HTTPPort == "" {
		c.Server.HTTPPort = "8000"
	}
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = 60 * time.Second
	}
	if c.Upstreams.HTTPTimeout <= 0 {
		c.Upstreams.HTTPTimeout = 15 * time.Second
	}
	if c.Upstreams.CityDirectory.MinPopulation <= 0 {
		c.Upstreams.CityDirectory.MinPopulation = 1_000_000
	}
	if c.Upstreams.CityDirectory.Limit <= 0 {
		c.Upstreams.CityDirectory.Limit = 30
	}
	if c.Upstreams.ImageSearch.DefaultImageURL == "" {
		c.Upstreams.ImageSearch.DefaultImageURL = "/static/img/default-city.svg"
	}
	if c.Upstreams.Gemini.Model == "" {
		c.Upstreams.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Listing.CacheTTL <= 0 {
		c.Listing.CacheTTL = 24 * time.Hour
	}
	if c.Listing.ImageConcurrency <= 0 {
		c.Listing.ImageConcurrency = 6
	}
	if c.Lookups.TTL <= 0 {
		c.Lookups.TTL = 10 * time.Minute
	}
}
