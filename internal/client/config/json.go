package config

import (
	"encoding/json"
	"os"

	"github.com/sultan0alshami/wathiq-sub001/internal/flagx"
	"github.com/sultan0alshami/wathiq-sub001/internal/timex"
)

// JsonConfig is the on-disk shape of the client config. Absent fields keep
// their previous values.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	SyncURL             *string         `json:"sync_url"`
	DBPath              *string         `json:"db_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config, if any.
// It panics on unreadable or malformed files.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.SyncURL != nil {
		cfg.SyncURL = *jc.SyncURL
	}
	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
