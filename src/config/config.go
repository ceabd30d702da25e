package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"series-proxy/src/models"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL           = "https://api.stlouisfed.org/fred/series/observations"
	DefaultAPIKeyEnv         = "FRED_API_KEY"
	DefaultTimeoutSeconds    = 10
	DefaultConcurrency       = 4
	DefaultRequestsPerMinute = 120
	DefaultAsOfTimezone      = "America/Chicago"
	DefaultRefreshSeconds    = 900
	DefaultRetentionDays     = 30
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// resolved once at load time, never re-read per request
	apiKey string
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	return FromModel(&modelConfig)
}

// -----------------------------------------------------------------------------

// FromModel applies defaults, resolves the upstream credential and validates.
func FromModel(m *models.MConfig) (*Config, error) {
	applyDefaults(m)

	config := &Config{MConfig: m}
	config.apiKey = resolveAPIKey(m.Upstream)

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a configuration usable without a file.
func Default() *models.MConfig {
	m := &models.MConfig{
		Name:      "series-proxy",
		Host:      "0.0.0.0",
		Port:      8080,
		LogLevel:  "INFO",
		LogFormat: "json",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "series-proxy.db",
		},
		Watchlist: models.MWatchlistConfig{
			Series:           []string{"MORTGAGE30US", "DGS10", "FEDFUNDS", "CPIAUCSL"},
			BusinessDaysOnly: true,
		},
	}
	applyDefaults(m)
	return m
}

// -----------------------------------------------------------------------------

func applyDefaults(m *models.MConfig) {
	if m.LogLevel == "" {
		m.LogLevel = "INFO"
	}
	if m.LogFormat == "" {
		m.LogFormat = "json"
	}
	if m.Network.RequestTimeout == 0 {
		m.Network.RequestTimeout = DefaultTimeoutSeconds
	}
	if m.Network.ConcurrentRequests == 0 {
		m.Network.ConcurrentRequests = DefaultConcurrency
	}
	if m.Network.RequestsPerMinute == 0 {
		m.Network.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if m.Network.Burst == 0 {
		m.Network.Burst = m.Network.ConcurrentRequests
	}
	if m.Upstream.BaseURL == "" {
		m.Upstream.BaseURL = DefaultBaseURL
	}
	if m.Upstream.APIKeyEnv == "" {
		m.Upstream.APIKeyEnv = DefaultAPIKeyEnv
	}
	if m.Upstream.AsOfTimezone == "" {
		m.Upstream.AsOfTimezone = DefaultAsOfTimezone
	}
	if m.Storage.DBType == "" {
		m.Storage.DBType = "none"
	}
	if m.Storage.RetentionDays == 0 {
		m.Storage.RetentionDays = DefaultRetentionDays
	}
	if m.Watchlist.UpdateIntervalSeconds == 0 {
		m.Watchlist.UpdateIntervalSeconds = DefaultRefreshSeconds
	}
	if m.Watchlist.Calendar == "" {
		m.Watchlist.Calendar = "xnys"
	}
}

// -----------------------------------------------------------------------------

func resolveAPIKey(u models.MUpstreamConfig) string {
	if key := strings.TrimSpace(u.APIKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(u.APIKeyEnv))
}

// -----------------------------------------------------------------------------

// APIKey returns the upstream credential, empty when none was configured.
func (c *Config) APIKey() string {
	return c.apiKey
}

// CredentialName is the name reported to callers when the credential is missing.
func (c *Config) CredentialName() string {
	return c.Upstream.APIKeyEnv
}

// AsOfLocation is the time zone used to compute the as-of date of upstream queries.
func (c *Config) AsOfLocation() *time.Location {
	loc, err := time.LoadLocation(c.Upstream.AsOfTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARNING", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.LogFormat)
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}
	if c.Network.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be greater than 0")
	}
	if c.Network.Burst <= 0 {
		return fmt.Errorf("burst must be greater than 0")
	}

	// Validate Upstream configuration
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream base url must be http(s): %s", c.Upstream.BaseURL)
	}
	if _, err := time.LoadLocation(c.Upstream.AsOfTimezone); err != nil {
		return fmt.Errorf("invalid as-of timezone '%s': %w", c.Upstream.AsOfTimezone, err)
	}

	// Validate Watchlist configuration
	if c.Watchlist.Enabled {
		if len(models.NewSeriesRequest(c.Watchlist.Series)) == 0 {
			return fmt.Errorf("watchlist is enabled but has no series")
		}
		if c.Watchlist.UpdateIntervalSeconds <= 0 {
			return fmt.Errorf("update interval must be greater than 0")
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
