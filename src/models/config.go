package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	LogFormat string           `yaml:"log_format"`
	LogFile   string           `yaml:"log_file"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Upstream  MUpstreamConfig  `yaml:"upstream"`
	Watchlist MWatchlistConfig `yaml:"watchlist"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	RequestsPerMinute  int    `yaml:"requests_per_minute"`
	Burst              int    `yaml:"burst"`
	UserAgent          string `yaml:"user_agent"`
	Proxy              string `yaml:"proxy"`
}

type MUpstreamConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key,omitempty"` // Optional, falls back to APIKeyEnv
	APIKeyEnv    string `yaml:"api_key_env"`
	AsOfTimezone string `yaml:"as_of_timezone"`
}

type MWatchlistConfig struct {
	Enabled               bool     `yaml:"enabled"`
	Series                []string `yaml:"series"`
	UpdateIntervalSeconds int      `yaml:"update_interval_seconds"`
	BusinessDaysOnly      bool     `yaml:"business_days_only"`
	Calendar              string   `yaml:"calendar"`
}
