package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempConfig writes content to a config file inside a temp dir and
// returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `name: "TestProxy"
host: "127.0.0.1"
port: 8080
`

func TestNewConfigAppliesDefaults(t *testing.T) {
	t.Setenv("FRED_API_KEY", "")
	cfg, err := NewConfig(writeTempConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "TestProxy", cfg.Name)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Network.RequestTimeout)
	assert.Equal(t, DefaultConcurrency, cfg.Network.ConcurrentRequests)
	assert.Equal(t, DefaultConcurrency, cfg.Network.Burst)
	assert.Equal(t, DefaultRequestsPerMinute, cfg.Network.RequestsPerMinute)
	assert.Equal(t, DefaultBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, "FRED_API_KEY", cfg.CredentialName())
	assert.Equal(t, "none", cfg.Storage.DBType)
	assert.Empty(t, cfg.APIKey())
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("FRED_API_KEY", "  env-key ")
	cfg, err := NewConfig(writeTempConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey())
}

func TestAPIKeyFromFileWins(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "env-key")
	content := minimalConfig + `upstream:
  api_key: "file-key"
  api_key_env: "CUSTOM_KEY"
`
	cfg, err := NewConfig(writeTempConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.APIKey())
	assert.Equal(t, "CUSTOM_KEY", cfg.CredentialName())
}

func TestAPIKeyResolvedOnce(t *testing.T) {
	t.Setenv("FRED_API_KEY", "first")
	cfg, err := NewConfig(writeTempConfig(t, minimalConfig))
	require.NoError(t, err)

	t.Setenv("FRED_API_KEY", "second")
	assert.Equal(t, "first", cfg.APIKey())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"privileged port", `name: x
host: h
port: 80
`},
		{"sqlite without path", minimalConfig + `storage:
  db_type: sqlite
`},
		{"postgres without dsn", minimalConfig + `storage:
  db_type: postgres
`},
		{"unknown storage", minimalConfig + `storage:
  db_type: mongo
`},
		{"bad log level", minimalConfig + `log_level: LOUD
`},
		{"empty watchlist", minimalConfig + `watchlist:
  enabled: true
  series: [" ", ""]
`},
		{"non http upstream", minimalConfig + `upstream:
  base_url: "ftp://example.com"
`},
		{"bad timezone", minimalConfig + `upstream:
  as_of_timezone: "Mars/Olympus"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(writeTempConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := FromModel(Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Watchlist.Series, loaded.Watchlist.Series)
	assert.Equal(t, cfg.Storage.DBType, loaded.Storage.DBType)
	assert.Equal(t, cfg.Port, loaded.Port)
}

func TestAsOfLocation(t *testing.T) {
	cfg, err := FromModel(Default())
	require.NoError(t, err)
	assert.Equal(t, DefaultAsOfTimezone, cfg.AsOfLocation().String())
}
