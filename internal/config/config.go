// Package config centralizes application configuration into typed structs
// populated from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the top-level configuration container.
type Config struct {
	Env     string
	Server  ServerConfig
	Dataset DatasetConfig
	Query   QueryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatasetConfig points at the two cleaned CSV inputs supplied by the
// upstream data-preparation step.
type DatasetConfig struct {
	ListingsCSV string
	CalendarCSV string
}

// QueryConfig bounds result sizes. ListingsCap caps the map-overview
// endpoint; RectangleCap caps rectangle searches, with 0 meaning uncapped
// to match the original behavior.
type QueryConfig struct {
	ListingsCap  int
	RectangleCap int
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env: getEnv("APP_ENV", "dev"),
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Dataset: DatasetConfig{
			ListingsCSV: getEnv("LISTINGS_CSV", "data/listings_cleaned_subset.csv"),
			CalendarCSV: getEnv("CALENDAR_CSV", "data/calendar_cleaned.csv"),
		},
	}

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.Server.ReadTimeout = readTimeout

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.Server.WriteTimeout = writeTimeout

	listingsCap, err := parseIntEnv("LISTINGS_CAP", 1000)
	if err != nil {
		return Config{}, err
	}
	if listingsCap <= 0 {
		return Config{}, fmt.Errorf("LISTINGS_CAP must be positive, got %d", listingsCap)
	}
	cfg.Query.ListingsCap = listingsCap

	rectangleCap, err := parseIntEnv("RECT_RESULT_CAP", 0)
	if err != nil {
		return Config{}, err
	}
	if rectangleCap < 0 {
		return Config{}, fmt.Errorf("RECT_RESULT_CAP must be non-negative, got %d", rectangleCap)
	}
	cfg.Query.RectangleCap = rectangleCap

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
