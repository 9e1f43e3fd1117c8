// Package config handles application configuration using Viper.
// Viper merges YAML files, environment variables, and defaults in priority
// order; configuration is loaded into structs, not read as raw key-value
// pairs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/bookforge/cover-service/internal/cover"
)

// Config is the root configuration struct. Nested structs organize related
// settings; `mapstructure` tags tell Viper how to map YAML/env keys to
// struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Platform  PlatformConfig  `mapstructure:"platform"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	CoverDir     string `mapstructure:"cover_dir"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PlatformConfig holds the few platform knobs worth overriding per
// deployment. The full physical constant table lives in the engine; these
// settings adjust its operational limits without a rebuild.
type PlatformConfig struct {
	MaxDigitalMB int  `mapstructure:"max_digital_mb"`
	MaxPrintMB   int  `mapstructure:"max_print_mb"`
	EnablePDF    bool `mapstructure:"enable_pdf"` // requires pdftoppm on the host
	EnableVips   bool `mapstructure:"enable_vips"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/cover-service.db")
	v.SetDefault("storage.cover_dir", "./storage/covers")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("platform.max_digital_mb", 50)
	v.SetDefault("platform.max_print_mb", 650)
	v.SetDefault("platform.enable_pdf", true)
	v.SetDefault("platform.enable_vips", true)
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// COVER_ prefix + nested keys: COVER_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("COVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Apply overlays the configured byte ceilings onto a platform table.
// Zero values keep the platform defaults. Every entry point goes through
// here so one config file yields the same limits everywhere.
func (p PlatformConfig) Apply(spec cover.PlatformSpec) cover.PlatformSpec {
	if p.MaxDigitalMB > 0 {
		spec.MaxDigitalBytes = p.MaxDigitalMB << 20
	}
	if p.MaxPrintMB > 0 {
		spec.MaxPrintBytes = p.MaxPrintMB << 20
	}
	return spec
}
