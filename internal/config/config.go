// Package config provides configuration management for the metadata service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the metadata service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Aggregation contains fan-out and merge settings.
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	// Providers contains metadata provider API configurations.
	Providers ProvidersConfig `mapstructure:"providers"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
}

// AggregationConfig holds fan-out, quorum, and merge settings.
type AggregationConfig struct {
	// MinProviders is the number of providers that must respond successfully
	// for a search to succeed (default: 1).
	MinProviders int `mapstructure:"min_providers"`
	// DedupEnabled controls ISBN/title deduplication of results.
	DedupEnabled bool `mapstructure:"dedup_enabled"`
	// ConsensusEnabled controls consensus confidence scoring.
	ConsensusEnabled bool `mapstructure:"consensus_enabled"`
	// GlobalTimeout bounds the whole fan-out; zero disables it.
	GlobalTimeout time.Duration `mapstructure:"global_timeout"`
	// TitleSimilarity is the threshold for title-based dedup grouping (0-1).
	TitleSimilarity float64 `mapstructure:"title_similarity"`
}

// ProvidersConfig holds configuration for all metadata provider APIs.
type ProvidersConfig struct {
	// OpenLibrary contains Open Library API settings.
	OpenLibrary ProviderConfig `mapstructure:"open_library"`
	// GoogleBooks contains Google Books API settings.
	GoogleBooks ProviderConfig `mapstructure:"google_books"`
	// WikiData contains WikiData query service settings.
	WikiData ProviderConfig `mapstructure:"wikidata"`
	// ISBNdb contains ISBNdb API settings.
	ISBNdb ProviderConfig `mapstructure:"isbndb"`
	// LibraryOfCongress contains Library of Congress API settings.
	LibraryOfCongress ProviderConfig `mapstructure:"library_of_congress"`
}

// ProviderConfig holds configuration for a single metadata provider API.
type ProviderConfig struct {
	// Enabled controls whether this provider is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from environment variable, e.g. BOOKMETA_PROVIDERS_GOOGLE_BOOKS_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// RequestTimeout is the timeout for a single API call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// OperationTimeout is the timeout for a whole search including retries.
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// Priority is the tie-break weight; higher wins.
	Priority int `mapstructure:"priority"`
	// MaxResults is the maximum results per query.
	MaxResults int `mapstructure:"max_results"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("BOOKMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/metadata-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.Providers.GoogleBooks.APIKey = os.Getenv("BOOKMETA_PROVIDERS_GOOGLE_BOOKS_API_KEY")
	cfg.Providers.ISBNdb.APIKey = os.Getenv("BOOKMETA_PROVIDERS_ISBNDB_API_KEY")
	cfg.Providers.OpenLibrary.APIKey = os.Getenv("BOOKMETA_PROVIDERS_OPEN_LIBRARY_API_KEY")
	cfg.Providers.WikiData.APIKey = os.Getenv("BOOKMETA_PROVIDERS_WIKIDATA_API_KEY")
	cfg.Providers.LibraryOfCongress.APIKey = os.Getenv("BOOKMETA_PROVIDERS_LIBRARY_OF_CONGRESS_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Aggregation defaults
	v.SetDefault("aggregation.min_providers", 1)
	v.SetDefault("aggregation.dedup_enabled", true)
	v.SetDefault("aggregation.consensus_enabled", true)
	v.SetDefault("aggregation.global_timeout", "45s")
	v.SetDefault("aggregation.title_similarity", 0.8)

	// Provider defaults - Open Library
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("providers.open_library.enabled", true)
	v.SetDefault("providers.open_library.base_url", "https://openlibrary.org")
	v.SetDefault("providers.open_library.request_timeout", "10s")
	v.SetDefault("providers.open_library.operation_timeout", "30s")
	v.SetDefault("providers.open_library.rate_limit", 5.0)
	v.SetDefault("providers.open_library.priority", 80)
	v.SetDefault("providers.open_library.max_results", 50)

	// Provider defaults - Google Books (requires API key for high volume)
	v.SetDefault("providers.google_books.enabled", true)
	v.SetDefault("providers.google_books.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("providers.google_books.request_timeout", "10s")
	v.SetDefault("providers.google_books.operation_timeout", "30s")
	v.SetDefault("providers.google_books.rate_limit", 10.0)
	v.SetDefault("providers.google_books.priority", 70)
	v.SetDefault("providers.google_books.max_results", 40)

	// Provider defaults - WikiData
	v.SetDefault("providers.wikidata.enabled", true)
	v.SetDefault("providers.wikidata.base_url", "https://query.wikidata.org")
	v.SetDefault("providers.wikidata.request_timeout", "15s")
	v.SetDefault("providers.wikidata.operation_timeout", "45s")
	v.SetDefault("providers.wikidata.rate_limit", 2.0)
	v.SetDefault("providers.wikidata.priority", 60)
	v.SetDefault("providers.wikidata.max_results", 50)

	// Provider defaults - ISBNdb (disabled by default, requires API key)
	v.SetDefault("providers.isbndb.enabled", false)
	v.SetDefault("providers.isbndb.base_url", "https://api2.isbndb.com")
	v.SetDefault("providers.isbndb.request_timeout", "10s")
	v.SetDefault("providers.isbndb.operation_timeout", "30s")
	v.SetDefault("providers.isbndb.rate_limit", 1.0)
	v.SetDefault("providers.isbndb.priority", 90)
	v.SetDefault("providers.isbndb.max_results", 25)

	// Provider defaults - Library of Congress
	v.SetDefault("providers.library_of_congress.enabled", true)
	v.SetDefault("providers.library_of_congress.base_url", "https://www.loc.gov")
	v.SetDefault("providers.library_of_congress.request_timeout", "15s")
	v.SetDefault("providers.library_of_congress.operation_timeout", "45s")
	v.SetDefault("providers.library_of_congress.rate_limit", 2.0)
	v.SetDefault("providers.library_of_congress.priority", 85)
	v.SetDefault("providers.library_of_congress.max_results", 50)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate aggregation config
	if c.Aggregation.MinProviders < 1 {
		return fmt.Errorf("aggregation min_providers must be at least 1, got %d", c.Aggregation.MinProviders)
	}
	if c.Aggregation.TitleSimilarity < 0 || c.Aggregation.TitleSimilarity > 1 {
		return fmt.Errorf("aggregation title_similarity must be between 0 and 1, got %g", c.Aggregation.TitleSimilarity)
	}
	if c.Aggregation.GlobalTimeout < 0 {
		return fmt.Errorf("aggregation global_timeout must not be negative")
	}

	// Validate provider configs
	for name, pc := range map[string]ProviderConfig{
		"open_library":        c.Providers.OpenLibrary,
		"google_books":        c.Providers.GoogleBooks,
		"wikidata":            c.Providers.WikiData,
		"isbndb":              c.Providers.ISBNdb,
		"library_of_congress": c.Providers.LibraryOfCongress,
	} {
		if !pc.Enabled {
			continue
		}
		if pc.BaseURL == "" {
			return fmt.Errorf("provider %s is enabled but has no base_url", name)
		}
		if pc.RateLimit <= 0 {
			return fmt.Errorf("provider %s rate_limit must be positive, got %g", name, pc.RateLimit)
		}
		if pc.RequestTimeout <= 0 {
			return fmt.Errorf("provider %s request_timeout must be positive", name)
		}
	}

	// ISBNdb rejects unauthenticated requests outright.
	if c.Providers.ISBNdb.Enabled && c.Providers.ISBNdb.APIKey == "" {
		return fmt.Errorf("provider isbndb requires BOOKMETA_PROVIDERS_ISBNDB_API_KEY to be set")
	}

	return nil
}
