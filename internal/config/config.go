// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrMissingToken is returned when no upstream API token is configured.
// Ingestion refuses to start without one; no network call is attempted.
var ErrMissingToken = eris.New("config: api token is required")

// Config holds the full application configuration.
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// APIConfig holds football-data.org access settings and the tracked
// competition/season/team identity.
type APIConfig struct {
	Token           string  `yaml:"token" mapstructure:"token"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	CompetitionCode string  `yaml:"competition_code" mapstructure:"competition_code" validate:"required"`
	Season          int     `yaml:"season" mapstructure:"season" validate:"gte=2000"`
	TeamID          int64   `yaml:"team_id" mapstructure:"team_id"`
	RatePerMinute   float64 `yaml:"rate_per_minute" mapstructure:"rate_per_minute" validate:"gt=0"`
}

// StoreConfig configures the storage backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlite postgres"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the read-only query server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port" validate:"gt=0,lte=65535"`
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
	v.SetEnvPrefix("SEASONTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Empty defaults for token and database_url keep the keys
	// visible to Unmarshal when they are set via environment only.
	v.SetDefault("api.token", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("api.base_url", "https://api.football-data.org/v4")
	v.SetDefault("api.competition_code", "ELC")
	v.SetDefault("api.season", 2025)
	v.SetDefault("api.team_id", 348)
	v.SetDefault("api.rate_per_minute", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "warehouse/season.db")
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

// Validate checks structural constraints. The API token is validated
// separately by ValidateToken so that read-only commands can run without
// credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: store.database_url is required for the postgres driver")
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return eris.New("config: store.path is required for the sqlite driver")
	}
	return nil
}

// ValidateToken fails when the upstream API token is absent or blank.
func (c *Config) ValidateToken() error {
	if strings.TrimSpace(c.API.Token) == "" {
		return ErrMissingToken
	}
	return nil
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
