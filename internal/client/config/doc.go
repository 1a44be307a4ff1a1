// Package config loads runtime configuration for the skincare CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-b string   backend base URL
//	-u string   image host (imgbb|s3)
//	-k string   ImgBB API key
//	-s string   local store (sqlite|redis)
//	-d string   SQLite database path
//	-r string   Redis address
//	-t int      identity cache TTL (minutes)
//	-m string   metrics listen address
//	-l string   log level
//
// # JSON schema
//
// Durations are timex.Duration values, so they can be strings like "10m" or
// integer nanoseconds:
//
//	{
//	  "backend_url": "http://127.0.0.1:5000",
//	  "image_host": "imgbb",
//	  "imgbb_api_key": "...",
//	  "identity_ttl": "10m",
//	  "token_secret": "...",
//	  "store_secret": "...",
//	  "metrics_addr": "127.0.0.1:9100"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
