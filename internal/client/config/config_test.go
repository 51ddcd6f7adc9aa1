package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, "/api/trips/sync", c.SyncURL)
	assert.Equal(t, "wathiq.db", c.DBPath)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"wathiq"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "/api/trips/sync", cfg.SyncURL)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_EnvBetweenJSONAndFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{"server_url": "http://json:1", "db_path": "json.db"})
	t.Setenv("WATHIQ_SERVER_URL", "http://env:2")
	t.Setenv("WATHIQ_DB_PATH", "env.db")
	os.Args = []string{"wathiq", "-c", path, "-db", "flag.db"}

	cfg := LoadConfig()
	assert.Equal(t, "http://env:2", cfg.ServerURL, "env overrides json")
	assert.Equal(t, "flag.db", cfg.DBPath, "flags override env")
}

func TestLoadConfig_SubSecondJSONDurationsSurvive(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{"online_check_interval": "500ms", "request_timeout": "1500ms"})
	os.Args = []string{"wathiq", "-c", path}

	cfg := LoadConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.OnlineCheckInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}

func TestLoadConfig_NonPositiveIntervalFallsBack(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{"online_check_interval": "0s"})
	os.Args = []string{"wathiq", "-c", path}

	cfg := LoadConfig()
	assert.Equal(t, DefaultOnlineCheckInterval, cfg.OnlineCheckInterval)
}

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		"WATHIQ_SERVER_URL":      "https://ops.example.com",
		"WATHIQ_TRIPS_API_URL":   "https://sync.example.com/api/trips/sync",
		"WATHIQ_DB_PATH":         "/tmp/q.db",
		"WATHIQ_LOG_LEVEL":       "debug",
		"WATHIQ_REQUEST_TIMEOUT": "45s",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var c Config
	c.LoadDefaults()
	parseEnv(&c, lookup)

	assert.Equal(t, "https://ops.example.com", c.ServerURL)
	assert.Equal(t, "https://sync.example.com/api/trips/sync", c.SyncURL)
	assert.Equal(t, "/tmp/q.db", c.DBPath)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 45*time.Second, c.RequestTimeout)
}

func TestParseEnv_BlankAndInvalidIgnored(t *testing.T) {
	env := map[string]string{
		"WATHIQ_TRIPS_API_URL":   "   ",
		"WATHIQ_REQUEST_TIMEOUT": "soon",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var c Config
	c.LoadDefaults()
	parseEnv(&c, lookup)

	assert.Equal(t, DefaultSyncPath, c.SyncURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
}
