package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/imgdrop/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
// Supported flags:
//
//	-m string        upload mode: managed or webhook
//	-e string        object storage endpoint (backend URL)
//	-k string        object storage access key
//	-s string        object storage secret key
//	-g string        object storage region
//	-b string        bucket name
//	-d string        PostgreSQL DSN
//	-l string        local settings database path
//	-w string        webhook URL for this session
//	-v string        log level
//	-metrics string  address to expose Prometheus metrics on
//
// Unknown arguments are filtered out first with flagx.FilterArgs so that -c
// and positional arguments do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-m", "-e", "-k", "-s", "-g", "-b", "-d", "-l", "-w", "-v", "-metrics"})

	fs := flag.NewFlagSet("imgdrop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	mode := fs.String("m", string(cfg.Mode), "upload mode: managed or webhook")
	fs.StringVar(&cfg.BackendURL, "e", cfg.BackendURL, "object storage endpoint")
	fs.StringVar(&cfg.BackendKey, "k", cfg.BackendKey, "object storage access key")
	fs.StringVar(&cfg.BackendSecret, "s", cfg.BackendSecret, "object storage secret key")
	fs.StringVar(&cfg.Region, "g", cfg.Region, "object storage region")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.LocalDBPath, "l", cfg.LocalDBPath, "local settings database")
	fs.StringVar(&cfg.WebhookURL, "w", cfg.WebhookURL, "webhook URL")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := ParseMode(*mode)
	if err != nil {
		return err
	}
	cfg.Mode = m
	return nil
}
