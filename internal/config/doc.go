// Package config loads runtime configuration for imgdrop.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then the process environment
//     (IMGDROP_* variables, see parseEnv).
//  3. Optional JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags).
//
// Later sources override earlier ones.
//
// # Managed backend
//
// The managed backend needs IMGDROP_BACKEND_URL and IMGDROP_BACKEND_KEY.
// There are no defaults for them: when either is missing the CLI keeps
// running, shows a configuration banner and refuses to dispatch managed
// uploads (see (*Config).MissingManaged).
//
// # JSON schema
//
//	{
//	  "mode": "managed",
//	  "backend_url": "http://127.0.0.1:9000",
//	  "backend_key": "minioadmin",
//	  "backend_secret": "minioadmin",
//	  "bucket": "project-images",
//	  "database_dsn": "postgres://...",
//	  "progress_interval": "200ms",
//	  "http_timeout": "2m"
//	}
package config
