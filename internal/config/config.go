package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment" validate:"required"`
	Server      ServerConfig    `mapstructure:"server"`
	AQHI        AQHIConfig      `mapstructure:"aqhi"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

// AQHIConfig selects the feeds and the tracked region. When Province or RegionID
// is empty the region closest to Latitude/Longitude is tracked.
type AQHIConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	Timeout         int     `mapstructure:"timeout" validate:"min=1"`
	Language        string  `mapstructure:"language" validate:"oneof=english french"`
	UserAgent       string  `mapstructure:"user_agent"`
	Province        string  `mapstructure:"province"`
	RegionID        string  `mapstructure:"region_id"`
	Latitude        float64 `mapstructure:"latitude" validate:"min=-90,max=90"`
	Longitude       float64 `mapstructure:"longitude" validate:"min=-180,max=180"`
	RefreshInterval int     `mapstructure:"refresh_interval" validate:"min=0"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		AQHI: AQHIConfig{
			BaseURL:   "http://dd.weather.gc.ca",
			Timeout:   10,
			Language:  "english",
			UserAgent: "aqhi-canada-go/1.0",
			// Toronto Downtown
			Latitude:        43.6529,
			Longitude:       -79.3849,
			RefreshInterval: 900,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "aqhi-canada",
		},
	}
}
