// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"geomap/internal/errs"

	"github.com/joho/godotenv"
)

type Config struct {
	// Exactly one tile source is used, checked in this order.
	TileURL     string
	TileDir     string
	MBTilesPath string

	StylePath  string
	SchemePath string
	MaxLevel   int

	Workers      int
	FetchTimeout time.Duration
	MaxRetries   int

	LogLevel string
	LogFile  string

	MetricsAddr string
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errs.Configuration(err, "load %s", f)
		}
	}
	return FromEnv(), nil
}

// FromEnv builds the config from the process environment only.
func FromEnv() *Config {
	return &Config{
		TileURL:     getEnv("GEOMAP_TILE_URL", ""),
		TileDir:     getEnv("GEOMAP_TILE_DIR", ""),
		MBTilesPath: getEnv("GEOMAP_MBTILES", ""),

		StylePath:  getEnv("GEOMAP_STYLE", ""),
		SchemePath: getEnv("GEOMAP_SCHEME", ""),
		MaxLevel:   getEnvAsInt("GEOMAP_MAX_LEVEL", 14),

		Workers:      getEnvAsInt("GEOMAP_WORKERS", 4),
		FetchTimeout: getEnvAsDuration("GEOMAP_FETCH_TIMEOUT", 10*time.Second),
		MaxRetries:   getEnvAsInt("GEOMAP_MAX_RETRIES", 3),

		LogLevel: getEnv("GEOMAP_LOG_LEVEL", "info"),
		LogFile:  getEnv("GEOMAP_LOG_FILE", ""),

		MetricsAddr: getEnv("GEOMAP_METRICS_ADDR", ""),
	}
}

// HasTileSource reports whether any tile source is configured.
func (c *Config) HasTileSource() bool {
	return c.TileURL != "" || c.TileDir != "" || c.MBTilesPath != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}
