package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	Matching  MatchingConfig
	Scrape    ScrapeConfig
	ETA       ETAConfig
	Geocode   GeocodeConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// DatabaseConfig holds the raw-product archive configuration
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

// MatchingConfig holds the merge-engine tunables
type MatchingConfig struct {
	ScoreThreshold     int     `mapstructure:"score_threshold"`
	HighScoreThreshold int     `mapstructure:"high_score_threshold"`
	QuantityTolerance  float64 `mapstructure:"quantity_tolerance"`
	ShuffleSingles     bool    `mapstructure:"shuffle_singles"`
	EnableDebugLogging bool    `mapstructure:"debug"`
}

// ScrapeConfig holds scraping configuration
type ScrapeConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	DefaultAddress string        `mapstructure:"default_address"`
	DefaultPincode string        `mapstructure:"default_pincode"`

	// Base URL overrides, used by tests and proxies; empty selects each
	// platform's production endpoint.
	BlinkitBaseURL   string `mapstructure:"blinkit_base_url"`
	ZeptoBaseURL     string `mapstructure:"zepto_base_url"`
	DmartBaseURL     string `mapstructure:"dmart_base_url"`
	InstamartBaseURL string `mapstructure:"instamart_base_url"`
}

// ETAConfig holds delivery-estimate fetch configuration
type ETAConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeocodeConfig holds geocoding configuration
type GeocodeConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP  int           `mapstructure:"per_ip"`
	Window time.Duration `mapstructure:"window"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/quickcompare/")

	// Environment variable settings
	v.SetEnvPrefix("QUICKCOMPARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.max_entries", 1024)

	// Archive defaults
	v.SetDefault("database.path", "product.db")
	v.SetDefault("database.enabled", true)

	// Matching defaults
	v.SetDefault("matching.score_threshold", 75)
	v.SetDefault("matching.high_score_threshold", 90)
	v.SetDefault("matching.quantity_tolerance", 0.15)
	v.SetDefault("matching.shuffle_singles", true)
	v.SetDefault("matching.debug", false)

	// Scrape defaults
	v.SetDefault("scrape.timeout", "40s")
	v.SetDefault("scrape.default_address", "Kothrud, Pune")
	v.SetDefault("scrape.default_pincode", "411038")

	// ETA defaults
	v.SetDefault("eta.timeout", "25s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.window", "1m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Matching.QuantityTolerance <= 0 || config.Matching.QuantityTolerance >= 1 {
		return fmt.Errorf("matching quantity tolerance must be in (0, 1), got: %v", config.Matching.QuantityTolerance)
	}

	if config.Matching.ScoreThreshold <= 0 || config.Matching.ScoreThreshold > 100 {
		return fmt.Errorf("matching score threshold must be in (0, 100], got: %d", config.Matching.ScoreThreshold)
	}

	return nil
}
