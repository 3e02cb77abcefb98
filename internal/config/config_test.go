package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "eagle-eye.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Ingest.TimeoutSecs)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.Places.BaseURL)
	assert.InDelta(t, 10, cfg.Places.RateLimit, 0.001)
	assert.Equal(t, 168, cfg.Places.CacheTTLHours)
	assert.Equal(t, "https://besttime.app/api/v1", cfg.BestTime.BaseURL)
	assert.Equal(t, 720, cfg.BestTime.CacheTTLHours)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 20, cfg.Enrich.TopBlocks)
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
	assert.Equal(t, 3, cfg.Enrich.RetryAttempts)
	assert.Equal(t, "xlsx", cfg.Report.Format)
	assert.Equal(t, 10, cfg.Report.BriefingTop)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/eagle
log:
  level: debug
  format: console
server:
  port: 9090
enrich:
  top_blocks: 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/eagle", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Enrich.TopBlocks)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Enrich.Concurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("EAGLE_STORE_DRIVER", "postgres")
	t.Setenv("EAGLE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("EAGLE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = "eagle-eye.db"
	cfg.Enrich.Concurrency = 4
	cfg.Report.Format = "xlsx"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateIngest_SourcePresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Ingest.Source = "l2_ports.csv"

	assert.NoError(t, cfg.Validate("ingest"))
}

func TestValidateIngest_MissingSource(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.source is required")
}

func TestValidateEnrich_MissingKeys(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("enrich")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.key is required")
	assert.Contains(t, err.Error(), "besttime.private_key is required")
}

func TestValidateEnrich_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Places.Key = "places-key"
	cfg.BestTime.PrivateKey = "bt-private"

	assert.NoError(t, cfg.Validate("enrich"))
}

func TestValidateReport_BadFormat(t *testing.T) {
	cfg := validDefaults()
	cfg.Report.Format = "pdf"

	err := cfg.Validate("report")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report.format must be xlsx or csv")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateStoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")

	cfg.Store.Driver = "postgres"
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.DatabaseURL = "postgres://localhost/eagle"
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Enrich.Concurrency = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enrich.concurrency must be between 1 and 32")

	cfg.Enrich.Concurrency = 33
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enrich.concurrency must be between 1 and 32")

	cfg.Enrich.Concurrency = 32
	assert.NoError(t, cfg.Validate("serve"))
}
