package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingAPIKey  = errors.New("GOOGLE_MAPS_API_KEY is required")
	ErrMissingDB      = errors.New("DATABASE_URL is required for the postgres backend")
	ErrInvalidBackend = errors.New("invalid store backend")
	ErrInvalidRadius  = errors.New("invalid default radius")
)

// supportedRadii mirrors the radius options exposed to callers.
var supportedRadii = map[int]bool{2500: true, 5000: true, 10000: true}

type Config struct {
	Google    GoogleConfig
	Cache     CacheConfig
	Store     StoreConfig
	Server    ServerConfig
	Log       LogConfig
	Intervals IntervalConfig
	Search    SearchConfig
}

type GoogleConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	Dir string
	TTL time.Duration
}

type StoreConfig struct {
	Backend     string
	OutputPath  string
	DatabaseURL string
}

type ServerConfig struct {
	BindAddr string
}

type LogConfig struct {
	Level string
}

type IntervalConfig struct {
	Page     time.Duration
	Category time.Duration
}

type SearchConfig struct {
	RadiusMeters int
}

func Load() (*Config, error) {
	cfg := &Config{
		Google: GoogleConfig{
			APIKey:  os.Getenv("GOOGLE_MAPS_API_KEY"),
			BaseURL: getEnvOrDefault("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com"),
			Timeout: time.Duration(getEnvIntOrDefault("GOOGLE_TIMEOUT_SEC", 30)) * time.Second,
		},
		Cache: CacheConfig{
			Dir: getEnvOrDefault("CACHE_DIR", "cache"),
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_HOURS", 24)) * time.Hour,
		},
		Store: StoreConfig{
			Backend:     getEnvOrDefault("STORE_BACKEND", "jsonfile"),
			OutputPath:  getEnvOrDefault("OUTPUT_PATH", "businesses.json"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			BindAddr: getEnvOrDefault("BIND_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Intervals: IntervalConfig{
			Page:     time.Duration(getEnvIntOrDefault("PAGE_INTERVAL_SEC", 2)) * time.Second,
			Category: time.Duration(getEnvIntOrDefault("CATEGORY_INTERVAL_SEC", 1)) * time.Second,
		},
		Search: SearchConfig{
			RadiusMeters: getEnvIntOrDefault("DEFAULT_RADIUS_M", 2500),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Google.APIKey == "" {
		return ErrMissingAPIKey
	}
	switch c.Store.Backend {
	case "jsonfile":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return ErrMissingDB
		}
	default:
		return ErrInvalidBackend
	}
	if !supportedRadii[c.Search.RadiusMeters] {
		return ErrInvalidRadius
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
