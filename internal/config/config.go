package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration, loaded from environment
// variables (an optional .env file is read by the entrypoints before Load).
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	GeoAPI     GeoAPIConfig
	Cache      CacheConfig
	Ingest     IngestConfig
	Precompute PrecomputeConfig
}

// DatabaseType selects the spatial backend.
type DatabaseType string

const (
	Postgres   DatabaseType = "postgres"
	SpatiaLite DatabaseType = "spatialite"
)

type DatabaseConfig struct {
	Type            DatabaseType
	URL             string // postgres DSN
	SQLitePath      string // spatialite database file
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type ServerConfig struct {
	Port string
}

// GeoAPIConfig configures the external per-municipality registry client.
type GeoAPIConfig struct {
	BaseURL     string
	Token       string
	PageSize    int
	Timeout     time.Duration
	MaxAttempts int
	// RatePerSec caps outgoing requests toward the registry.
	RatePerSec float64
}

type CacheConfig struct {
	// Dir holds the precomputed GeoJSON artifacts, one file per entity.
	Dir string
	// SimplifyTolerance is the default coordinate-unit threshold used by
	// SimplifyPreserveTopology. Overridable per request.
	SimplifyTolerance float64
	// SimplifyDecimals is the default coordinate decimal precision.
	SimplifyDecimals int
}

type IngestConfig struct {
	// QuarantineDir receives the per-run anomaly artifacts.
	QuarantineDir string
	// FreshnessWindow: imports are skipped when the target table already has
	// rows created inside this window.
	FreshnessWindow time.Duration
	ManifestPath    string
}

type PrecomputeConfig struct {
	Hour   int
	Minute int
}

// Load reads configuration from environment variables with safe defaults.
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:            databaseType(getEnv("DATABASE_TYPE", "postgres")),
			URL:             getEnv("DATABASE_URL", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "data/terra_data.sqlite"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "5050"),
		},
		GeoAPI: GeoAPIConfig{
			BaseURL:     getEnv("GEOAPI_URL", "http://geoapi.idace.ce.gov.br/geoapi"),
			Token:       getEnv("GEOAPI_TOKEN", ""),
			PageSize:    getEnvAsInt("GEOAPI_PAGE_SIZE", 10000),
			Timeout:     getEnvAsDuration("GEOAPI_TIMEOUT", 60*time.Second),
			MaxAttempts: getEnvAsInt("GEOAPI_MAX_ATTEMPTS", 5),
			RatePerSec:  getEnvAsFloat("GEOAPI_RATE_PER_SEC", 2),
		},
		Cache: CacheConfig{
			Dir:               getEnv("CACHE_DIR", "geojson_cache"),
			SimplifyTolerance: getEnvAsFloat("SIMPLIFY_TOLERANCE", 0.0001),
			SimplifyDecimals:  getEnvAsInt("SIMPLIFY_DECIMALS", 6),
		},
		Ingest: IngestConfig{
			QuarantineDir:   getEnv("QUARANTINE_DIR", "para_averiguacao"),
			FreshnessWindow: getEnvAsDuration("FRESHNESS_HOURS", 24*time.Hour),
			ManifestPath:    getEnv("DATASETS_MANIFEST", "datasets.yml"),
		},
		Precompute: PrecomputeConfig{
			Hour:   getEnvAsInt("PRECOMPUTE_HOUR", 3),
			Minute: getEnvAsInt("PRECOMPUTE_MINUTE", 0),
		},
	}
}

func databaseType(s string) DatabaseType {
	if s == string(SpatiaLite) {
		return SpatiaLite
	}
	return Postgres
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvAsDuration accepts either a plain hour count ("24") or a Go duration
// string ("24h"). The *_HOURS variables historically held bare integers.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}
