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
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	OSM            OSMConfig            `yaml:"osm" mapstructure:"osm"`
	Municipalities MunicipalitiesConfig `yaml:"municipalities" mapstructure:"municipalities"`
	Roads          RoadsConfig          `yaml:"roads" mapstructure:"roads"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// OSMConfig configures extract processing.
type OSMConfig struct {
	BulkSize      int `yaml:"bulk_size" mapstructure:"bulk_size"`
	DecodeWorkers int `yaml:"decode_workers" mapstructure:"decode_workers"`
}

// MunicipalitiesConfig configures boundary loading.
type MunicipalitiesConfig struct {
	NameField string `yaml:"name_field" mapstructure:"name_field"`
}

// RoadsConfig configures road segment loading.
type RoadsConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	StreetField string `yaml:"street_field" mapstructure:"street_field"`
	AltField    string `yaml:"alt_field" mapstructure:"alt_field"`
	LeftFrom    string `yaml:"left_from" mapstructure:"left_from"`
	LeftTo      string `yaml:"left_to" mapstructure:"left_to"`
	RightFrom   string `yaml:"right_from" mapstructure:"right_from"`
	RightTo     string `yaml:"right_to" mapstructure:"right_to"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and GEOCODER_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.path", "geocoder.db")
	v.SetDefault("osm.bulk_size", 256)
	v.SetDefault("osm.decode_workers", 0)
	v.SetDefault("municipalities.name_field", "nimi")
	v.SetDefault("roads.concurrency", 3)
	v.SetDefault("roads.street_field", "FULLNAME")
	v.SetDefault("roads.left_from", "LFROMADD")
	v.SetDefault("roads.left_to", "LTOADD")
	v.SetDefault("roads.right_from", "RFROMADD")
	v.SetDefault("roads.right_to", "RTOADD")
	v.SetDefault("server.port", 8888)
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

// InitLogger builds the global zap logger from the log config.
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
