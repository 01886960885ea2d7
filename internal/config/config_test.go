package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "geocoder.db", cfg.Store.Path)
	assert.Equal(t, 256, cfg.OSM.BulkSize)
	assert.Equal(t, "nimi", cfg.Municipalities.NameField)
	assert.Equal(t, 3, cfg.Roads.Concurrency)
	assert.Equal(t, "FULLNAME", cfg.Roads.StreetField)
	assert.Equal(t, "LFROMADD", cfg.Roads.LeftFrom)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GEOCODER_STORE_DRIVER", "sqlite")
	t.Setenv("GEOCODER_OSM_BULK_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 64, cfg.OSM.BulkSize)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
