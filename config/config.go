package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Browser  BrowserConfig
	LLM      LLMConfig
	Matching MatchingConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BrowserConfig holds headless-browser configuration for site probes
type BrowserConfig struct {
	MaxSessions     int           `mapstructure:"max_sessions"`     // concurrent browser tabs
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`    // hard per-site budget
	SettleDelay     time.Duration `mapstructure:"settle_delay"`     // wait for SPA content after load
	ChromeBin       string        `mapstructure:"chrome_bin"`       // optional explicit binary path
	Headless        bool          `mapstructure:"headless"`
	NavPerSecond    float64       `mapstructure:"nav_per_second"`   // outbound navigation rate limit
	ListingsPerPage int           `mapstructure:"listings_per_page"` // max cards extracted per results page
}

// LLMConfig holds the generative-reasoning backend configuration.
// The API key itself is not configured here; it arrives per request.
type LLMConfig struct {
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"` // override for tests/self-hosted gateways
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatchingConfig holds listing-title matching configuration
type MatchingConfig struct {
	MinConfidenceThreshold float64 `mapstructure:"min_confidence_threshold"`
	EnableDebugLogging     bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds evidence-cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescout/")

	// Environment variable settings
	v.SetEnvPrefix("PRICESCOUT")
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
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Browser defaults
	v.SetDefault("browser.max_sessions", 4)
	v.SetDefault("browser.probe_timeout", "45s")
	v.SetDefault("browser.settle_delay", "5s")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_per_second", 1.0)
	v.SetDefault("browser.listings_per_page", 25)

	// LLM defaults
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", "60s")

	// Matching defaults
	v.SetDefault("matching.min_confidence_threshold", 50.0)
	v.SetDefault("matching.enable_debug_logging", false)

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Browser.MaxSessions < 1 {
		return fmt.Errorf("browser.max_sessions must be at least 1, got: %d", config.Browser.MaxSessions)
	}

	if config.Browser.ProbeTimeout <= 0 {
		return fmt.Errorf("browser.probe_timeout must be positive, got: %s", config.Browser.ProbeTimeout)
	}

	if config.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}

	if config.Matching.MinConfidenceThreshold < 0 || config.Matching.MinConfidenceThreshold > 100 {
		return fmt.Errorf("matching.min_confidence_threshold must be in [0,100], got: %.1f",
			config.Matching.MinConfidenceThreshold)
	}

	return nil
}
