// Package config loads application configuration from config.yaml and the
// EAGLE_* environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	BestTime   BestTimeConfig   `yaml:"besttime" mapstructure:"besttime"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Admin      AdminConfig      `yaml:"admin" mapstructure:"admin"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// IngestConfig configures where the weekly ports utilization dump comes from.
type IngestConfig struct {
	Source      string `yaml:"source" mapstructure:"source"` // file path or ftp:// URL
	WeightsPath string `yaml:"weights_path" mapstructure:"weights_path"`
	FTPUser     string `yaml:"ftp_user" mapstructure:"ftp_user"`
	FTPPassword string `yaml:"ftp_password" mapstructure:"ftp_password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// BestTimeConfig holds BestTime foot-traffic API settings.
type BestTimeConfig struct {
	PrivateKey    string  `yaml:"private_key" mapstructure:"private_key"`
	PublicKey     string  `yaml:"public_key" mapstructure:"public_key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// NotionConfig holds Notion API credentials and the block database ID.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BlockDB string `yaml:"block_db" mapstructure:"block_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// AnthropicConfig holds Anthropic API settings for the report briefing.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// EnrichConfig bounds the POI/timing enrichment pass.
type EnrichConfig struct {
	TopBlocks      int `yaml:"top_blocks" mapstructure:"top_blocks"`
	Concurrency    int `yaml:"concurrency" mapstructure:"concurrency"`
	RetryAttempts  int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// ReportConfig configures report generation.
type ReportConfig struct {
	OutputDir   string `yaml:"output_dir" mapstructure:"output_dir"`
	Format      string `yaml:"format" mapstructure:"format"` // "xlsx" or "csv"
	BriefingTop int    `yaml:"briefing_top" mapstructure:"briefing_top"`
}

// AdminConfig points at the administrative boundary shapefile.
type AdminConfig struct {
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EAGLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "eagle-eye.db")
	v.SetDefault("ingest.timeout_secs", 60)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("places.cache_ttl_hours", 24*7)
	v.SetDefault("besttime.base_url", "https://besttime.app/api/v1")
	v.SetDefault("besttime.rate_limit", 2)
	v.SetDefault("besttime.cache_ttl_hours", 24*30)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("enrich.top_blocks", 20)
	v.SetDefault("enrich.concurrency", 4)
	v.SetDefault("enrich.retry_attempts", 3)
	v.SetDefault("enrich.retry_backoff_ms", 500)
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("report.format", "xlsx")
	v.SetDefault("report.briefing_top", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
