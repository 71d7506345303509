package config

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests; a missing .env file is not an error.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays IMGDROP_* environment variables. Values from a .env file
// are loaded first but never override variables already set in the process.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	loadDotEnv()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("IMGDROP_MODE"); ok && v != "" {
		m, err := ParseMode(v)
		if err != nil {
			return fmt.Errorf("IMGDROP_MODE: %w", err)
		}
		cfg.Mode = m
	}

	str(EnvBackendURL, &cfg.BackendURL)
	str(EnvBackendKey, &cfg.BackendKey)
	str("IMGDROP_BACKEND_SECRET", &cfg.BackendSecret)
	str("IMGDROP_REGION", &cfg.Region)
	str("IMGDROP_BUCKET", &cfg.Bucket)
	str("IMGDROP_STORAGE_DRIVER", &cfg.StorageDriver)
	str("IMGDROP_PUBLIC_BASE_URL", &cfg.PublicBaseURL)
	str("IMGDROP_DATABASE_DSN", &cfg.DatabaseDSN)
	str("IMGDROP_LOCAL_DB", &cfg.LocalDBPath)
	str("IMGDROP_WEBHOOK_URL", &cfg.WebhookURL)
	str("IMGDROP_LOG_LEVEL", &cfg.LogLevel)
	str("IMGDROP_LOG_FORMAT", &cfg.LogFormat)
	str("IMGDROP_METRICS_ADDR", &cfg.MetricsAddr)

	if v, ok := lookup("IMGDROP_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMGDROP_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = n
	}
	return nil
}
