package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the trip client.
//
// Fields:
//   - ServerURL: base URL of the trip server; /health is checked there.
//   - SyncURL: sync endpoint, absolute or relative to ServerURL.
//   - DBPath: SQLite file holding the offline queue.
//   - OnlineCheckInterval: how often the client checks server reachability.
//   - RequestTimeout: upper bound for one sync request.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL           string
	SyncURL             string
	DBPath              string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

const (
	DefaultSyncPath            = "/api/trips/sync"
	DefaultOnlineCheckInterval = 3 * time.Second
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SyncURL = DefaultSyncPath
	c.DBPath = "wathiq.db"
	c.OnlineCheckInterval = DefaultOnlineCheckInterval
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, then the environment and
// finally command-line flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, os.Args[1:])
	if cfg.OnlineCheckInterval <= 0 {
		cfg.OnlineCheckInterval = DefaultOnlineCheckInterval
	}
	return cfg
}

// parseEnv overlays values from WATHIQ_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("WATHIQ_SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := get("WATHIQ_TRIPS_API_URL"); ok {
		cfg.SyncURL = v
	}
	if v, ok := get("WATHIQ_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := get("WATHIQ_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("WATHIQ_REQUEST_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
}
