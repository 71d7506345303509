package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/imgdrop/internal/flagx"
	"github.com/dmitrijs2005/imgdrop/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let a
// file set only some values without clearing the rest.
type JsonConfig struct {
	Mode             *string         `json:"mode"`
	BackendURL       *string         `json:"backend_url"`
	BackendKey       *string         `json:"backend_key"`
	BackendSecret    *string         `json:"backend_secret"`
	Region           *string         `json:"region"`
	Bucket           *string         `json:"bucket"`
	StorageDriver    *string         `json:"storage_driver"`
	PublicBaseURL    *string         `json:"public_base_url"`
	DatabaseDSN      *string         `json:"database_dsn"`
	LocalDBPath      *string         `json:"local_db_path"`
	WebhookURL       *string         `json:"webhook_url"`
	ProgressStep     *int            `json:"progress_step"`
	ProgressInterval *timex.Duration `json:"progress_interval"`
	ProgressCap      *int            `json:"progress_cap"`
	HTTPTimeout      *timex.Duration `json:"http_timeout"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	MetricsAddr      *string         `json:"metrics_addr"`
	CacheSize        *int            `json:"cache_size"`
	CacheTTL         *timex.Duration `json:"cache_ttl"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Mode != nil {
		m, err := ParseMode(*jc.Mode)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		cfg.Mode = m
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setString(&cfg.BackendKey, jc.BackendKey)
	setString(&cfg.BackendSecret, jc.BackendSecret)
	setString(&cfg.Region, jc.Region)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.StorageDriver, jc.StorageDriver)
	setString(&cfg.PublicBaseURL, jc.PublicBaseURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.LocalDBPath, jc.LocalDBPath)
	setString(&cfg.WebhookURL, jc.WebhookURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)

	if jc.ProgressStep != nil {
		cfg.ProgressStep = *jc.ProgressStep
	}
	if jc.ProgressCap != nil {
		cfg.ProgressCap = *jc.ProgressCap
	}
	if jc.CacheSize != nil {
		cfg.CacheSize = *jc.CacheSize
	}
	if jc.ProgressInterval != nil {
		cfg.ProgressInterval = jc.ProgressInterval.Duration
	}
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.CacheTTL != nil {
		cfg.CacheTTL = jc.CacheTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
