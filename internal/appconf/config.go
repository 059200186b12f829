// Package appconf loads and validates the application configuration from
// a YAML file, with environment variables overriding secrets.
package appconf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port    int      `yaml:"port" validate:"gt=0,lte=65535"`
	Env     string   `yaml:"env" validate:"omitempty,oneof=development staging production"`
	APIKeys []string `yaml:"api_keys"`
}

// UpstreamConfig configures the MBTA v3 API client.
type UpstreamConfig struct {
	BaseURL               string `yaml:"base_url" validate:"omitempty,url"`
	APIKey                string `yaml:"api_key"`
	TimeoutSeconds        int    `yaml:"timeout_seconds" validate:"gte=0"`
	MaxConcurrentRequests int    `yaml:"max_concurrent_requests" validate:"gte=0"`
}

// Timeout returns the configured upstream timeout as a duration.
func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	MaxEntries    int `yaml:"max_entries" validate:"gte=0"`
	CutoverHour   int `yaml:"cutover_hour" validate:"gte=0,lte=23"`
	StatsInterval int `yaml:"stats_interval" validate:"gte=0"`
}

// BoardConfig configures the default journey board.
type BoardConfig struct {
	DepartureStop string `yaml:"departure_stop"`
	ArrivalStop   string `yaml:"arrival_stop"`
	MaxTrips      int    `yaml:"max_trips" validate:"gte=0"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Board    BoardConfig    `yaml:"board"`
}

// Load reads the configuration file at path, folds in environment
// overrides and validates the result. A missing .env file is fine; a
// missing config file is not, unless path is empty, in which case
// defaults plus environment variables are used.
func Load(path string) (AppConfig, error) {
	// Secrets live in the environment, optionally seeded from .env.
	_ = godotenv.Load()

	cfg := AppConfig{
		Server: ServerConfig{Port: 4000, Env: "development"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if key := os.Getenv("MBTA_API_KEY"); key != "" {
		cfg.Upstream.APIKey = key
	}
	if keys := os.Getenv("BOARD_API_KEYS"); keys != "" {
		cfg.Server.APIKeys = splitAndTrim(keys)
	}
	if stop := os.Getenv("BOARD_DEPARTURE_STOP"); stop != "" {
		cfg.Board.DepartureStop = stop
	}
	if stop := os.Getenv("BOARD_ARRIVAL_STOP"); stop != "" {
		cfg.Board.ArrivalStop = stop
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
