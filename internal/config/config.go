package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the ClipStream backend service.
type Config struct {
	AppPort       int
	MongoURI      string
	MongoDatabase string
	LogLevel      string
	Development   bool

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	BcryptCost         int

	CookieSecure bool

	StatsCacheTTL time.Duration

	AuthRateLimit  int
	AuthRateWindow time.Duration

	ObjectStore ObjectStoreConfig
}

// ObjectStoreConfig describes the S3-compatible media store.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides through environment
// variables. The token secrets have no default: issuing credentials signed
// with a known key would be worse than refusing to start.
func Load() (Config, error) {
	cfg := Config{
		AppPort:       getInt("CLIPSTREAM_PORT", 8080),
		MongoURI:      getString("CLIPSTREAM_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getString("CLIPSTREAM_MONGO_DB", "clipstream"),
		LogLevel:      getString("CLIPSTREAM_LOG_LEVEL", "info"),
		Development:   getBool("CLIPSTREAM_DEV_MODE", false),

		AccessTokenSecret:  os.Getenv("CLIPSTREAM_ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("CLIPSTREAM_REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     getDuration("CLIPSTREAM_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("CLIPSTREAM_REFRESH_TOKEN_TTL", 10*24*time.Hour),
		BcryptCost:         getInt("CLIPSTREAM_BCRYPT_COST", 10),

		CookieSecure: getBool("CLIPSTREAM_COOKIE_SECURE", false),

		StatsCacheTTL: getDuration("CLIPSTREAM_STATS_CACHE_TTL", 30*time.Second),

		AuthRateLimit:  getInt("CLIPSTREAM_AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getDuration("CLIPSTREAM_AUTH_RATE_WINDOW", time.Minute),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("CLIPSTREAM_MEDIA_BUCKET", ""),
			Region:        getString("CLIPSTREAM_MEDIA_REGION", "us-east-1"),
			Endpoint:      getString("CLIPSTREAM_MEDIA_ENDPOINT", ""),
			PublicBaseURL: getString("CLIPSTREAM_MEDIA_BASE_URL", ""),
		},
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, errors.New("config: CLIPSTREAM_ACCESS_TOKEN_SECRET and CLIPSTREAM_REFRESH_TOKEN_SECRET must be set")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
