package config

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.football-data.org/v4", cfg.API.BaseURL)
	assert.Equal(t, "ELC", cfg.API.CompetitionCode)
	assert.Equal(t, 2025, cfg.API.Season)
	assert.Equal(t, int64(348), cfg.API.TeamID)
	assert.Equal(t, float64(10), cfg.API.RatePerMinute)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warehouse/season.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.API.Token)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SEASONTRACKER_API_TOKEN", "secret")
	t.Setenv("SEASONTRACKER_API_COMPETITION_CODE", "PL")
	t.Setenv("SEASONTRACKER_STORE_DRIVER", "postgres")
	t.Setenv("SEASONTRACKER_STORE_DATABASE_URL", "postgres://localhost/seasons")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, "PL", cfg.API.CompetitionCode)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/seasons", cfg.Store.DatabaseURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad driver", func(t *testing.T) {
		cfg := base()
		cfg.Store.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("postgres requires database url", func(t *testing.T) {
		cfg := base()
		cfg.Store.Driver = "postgres"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database_url")
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		cfg := base()
		cfg.Store.Path = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("season too old", func(t *testing.T) {
		cfg := base()
		cfg.API.Season = 1900
		assert.Error(t, cfg.Validate())
	})
}

func TestValidateToken(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateToken()
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingToken))

	cfg.API.Token = "   "
	assert.Error(t, cfg.ValidateToken())

	cfg.API.Token = "secret"
	assert.NoError(t, cfg.ValidateToken())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
