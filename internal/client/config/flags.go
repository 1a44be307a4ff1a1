package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skincare/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   backend base URL
//	-u string   image host: imgbb or s3
//	-k string   ImgBB API key
//	-s string   local store: sqlite or redis
//	-d string   SQLite database path
//	-r string   Redis address
//	-t int      identity cache TTL (in minutes)
//	-m string   metrics listen address, empty to disable
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs so -c/-config and unknown flags
// do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-u", "-k", "-s", "-d", "-r", "-t", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.ImageHost, "u", cfg.ImageHost, "image host (imgbb|s3)")
	fs.StringVar(&cfg.ImgBBAPIKey, "k", cfg.ImgBBAPIKey, "ImgBB API key")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "local store (sqlite|redis)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	ttl := fs.Int("t", int(cfg.IdentityTTL.Minutes()), "identity cache TTL (in minutes)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.IdentityTTL = time.Duration(*ttl) * time.Minute
}
