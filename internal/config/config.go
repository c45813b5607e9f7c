// Package config loads service settings from an optional YAML file with
// ROUTEOPT_ environment overrides.
package config

import (
	"driver-route-optimizer/internal/domain"
	"driver-route-optimizer/internal/services"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "ROUTEOPT_"

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Sustained requests per second per server; 0 disables rate limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
	MaxBodyBytes   int64   `koanf:"max_body_bytes"`
	// Upper bound on driverCount accepted by /cluster and /optimize.
	MaxDrivers int `koanf:"max_drivers"`
}

type DatabaseConfig struct {
	// sqlite or postgres.
	Driver   string `koanf:"driver"`
	Path     string `koanf:"path"`
	URL      string `koanf:"url"`
	SeedPath string `koanf:"seed_path"`
}

type RedisConfig struct {
	// Empty disables the plan cache.
	URL string        `koanf:"url"`
	TTL time.Duration `koanf:"ttl"`
}

type GeocoderConfig struct {
	// mock or ors.
	Kind    string  `koanf:"kind"`
	APIKey  string  `koanf:"api_key"`
	BaseURL string  `koanf:"base_url"`
	Country string  `koanf:"country"`
	RPS     float64 `koanf:"rps"`
	MockLat float64 `koanf:"mock_lat"`
	MockLng float64 `koanf:"mock_lng"`
	Spread  float64 `koanf:"spread"`
}

type DepotConfig struct {
	Lat float64 `koanf:"lat"`
	Lng float64 `koanf:"lng"`
}

func (d DepotConfig) Coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: d.Lat, Lng: d.Lng}
}

type Config struct {
	Server   ServerConfig       `koanf:"server"`
	Database DatabaseConfig     `koanf:"database"`
	Redis    RedisConfig        `koanf:"redis"`
	Geocoder GeocoderConfig     `koanf:"geocoder"`
	Depot    DepotConfig        `koanf:"depot"`
	Tuning   services.Tuning    `koanf:"tuning"`
	Costs    services.CostRates `koanf:"costs"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    20,
			RateLimitBurst:  40,
			MaxBodyBytes:    10 << 20,
			MaxDrivers:      100,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "data/app.db",
			SeedPath: "data/seeds/stops.json",
		},
		Redis: RedisConfig{TTL: 15 * time.Minute},
		Geocoder: GeocoderConfig{
			Kind:    "mock",
			RPS:     5,
			MockLat: 51.5074,
			MockLng: -0.1278,
			Spread:  0.1,
		},
		Depot:  DepotConfig{Lat: 51.5074, Lng: -0.1278},
		Tuning: services.DefaultTuning(),
		Costs:  services.DefaultCostRates(),
	}
}

// Load layers the YAML file at path (skipped when path is empty) and
// ROUTEOPT_ environment variables over Default. Nested keys use a double
// underscore: ROUTEOPT_SERVER__PORT=9090.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("load config: unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load config: env overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}

	cfg.Tuning = cfg.Tuning.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver %q is not one of sqlite, postgres", c.Database.Driver)
	}

	switch c.Geocoder.Kind {
	case "mock":
	case "ors":
		if strings.TrimSpace(c.Geocoder.APIKey) == "" {
			return errors.New("geocoder.api_key is required for ors")
		}
	default:
		return fmt.Errorf("geocoder.kind %q is not one of mock, ors", c.Geocoder.Kind)
	}

	if !c.Depot.Coordinate().Valid() {
		return fmt.Errorf("depot (%v, %v) is not a valid coordinate", c.Depot.Lat, c.Depot.Lng)
	}
	if c.Server.MaxDrivers < 1 {
		return errors.New("server.max_drivers must be at least 1")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("server rate limit must not be negative")
	}
	return nil
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
