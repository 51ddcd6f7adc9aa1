package config

import (
	"flag"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
//	-s string   server base URL
//	-u string   sync endpoint URL or path
//	-db string  SQLite file path
//	-i int      online check interval (seconds)
//	-t int      request timeout (seconds)
//	-l string   log level
//
// Unknown arguments are ignored; a malformed value panics.
func parseFlags(cfg *Config, args []string) {
	fs, filtered := flagx.NewFilteredSet("client", args, []string{"-s", "-u", "-db", "-i", "-t", "-l"})

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.SyncURL, "u", cfg.SyncURL, "sync endpoint URL or path")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "local database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		panic(err)
	}

	// Durations from JSON or env may be sub-second; only flags that were
	// given replace them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
