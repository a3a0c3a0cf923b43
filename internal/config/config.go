package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store backend selectors.
const (
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// StoreBackend selects the impact store implementation: "postgres" or
	// "file".
	StoreBackend string
	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
	// ViewsDir is the root of the view directory tree for the file backend.
	ViewsDir string
	// Zoom is the mercator zoom level for expected-impact aggregation.
	Zoom int
	// QueryTimeout bounds every impact store query.
	QueryTimeout time.Duration
	// MetricsAddr enables the HTTP health/metrics endpoint when non-empty.
	MetricsAddr string
	LogDir      string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	timeoutSecs, err := strconv.Atoi(getEnv("AOS_QUERY_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("AOS_QUERY_TIMEOUT_SECONDS: %w", err)
	}
	zoom, err := strconv.Atoi(getEnv("AOS_ZOOM", "15"))
	if err != nil {
		return nil, fmt.Errorf("AOS_ZOOM: %w", err)
	}

	viewsDir := os.Getenv("AOS_VIEWS_DIR")
	if viewsDir == "" {
		if exeDir != "" {
			viewsDir = filepath.Join(exeDir, "views")
		} else {
			viewsDir = "views"
		}
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if exeDir != "" {
			logDir = filepath.Join(exeDir, "logs")
		} else {
			logDir = "logs"
		}
	}

	cfg := &AppConfig{
		StoreBackend: getEnv("AOS_STORE", StoreFile),
		PostgresDSN:  getEnv("AOS_POSTGRES_DSN", ""),
		ViewsDir:     viewsDir,
		Zoom:         zoom,
		QueryTimeout: time.Duration(timeoutSecs) * time.Second,
		MetricsAddr:  getEnv("AOS_METRICS_ADDR", ""),
		LogDir:       logDir,
	}

	return cfg, cfg.validate()
}

func (c *AppConfig) validate() error {
	switch c.StoreBackend {
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("AOS_POSTGRES_DSN is required when AOS_STORE=%s", StorePostgres)
		}
	case StoreFile:
		// ViewsDir existence is checked when the store opens.
	default:
		return fmt.Errorf("unknown AOS_STORE %q (expected %s or %s)", c.StoreBackend, StorePostgres, StoreFile)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("AOS_QUERY_TIMEOUT_SECONDS must be positive")
	}
	if c.Zoom < 0 || c.Zoom > 20 {
		return fmt.Errorf("AOS_ZOOM %d out of range", c.Zoom)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
