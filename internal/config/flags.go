package config

import (
	"github.com/spf13/pflag"

	"crypto-tracker/internal/coingecko"
	"crypto-tracker/internal/storage"
	"crypto-tracker/internal/storage/file"
)

// FlagKeys maps flag names registered by RegisterFlags to config keys.
var FlagKeys = map[string]string{
	"api-url":        "api.base_url",
	"interval":       "api.request_interval",
	"retries":        "api.max_retries",
	"storage":        "storage.backend",
	"watchlist-file": "storage.file.path",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"addr":           "server.addr", // serve only
}

// RegisterFlags adds the common configuration flags to fs. Flag defaults
// mirror the config defaults so unset flags never mask env or file values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-url", coingecko.DefaultBaseURL, "price API base URL")
	fs.Duration("interval", coingecko.DefaultRequestInterval, "wait before every API request")
	fs.Int("retries", 0, "retries for transient API failures (0 disables)")
	fs.String("storage", storage.BackendFile, "watchlist backend: file, memory, postgres, sqlite, redis")
	fs.String("watchlist-file", file.DefaultPath, "watchlist file for the file backend")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("log-format", "console", "log format: console or json")
}
