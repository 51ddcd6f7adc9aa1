// Package config loads runtime configuration for the trip client.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given by -c or -config.
//  3. Environment: WATHIQ_SERVER_URL, WATHIQ_TRIPS_API_URL, WATHIQ_DB_PATH,
//     WATHIQ_LOG_LEVEL, WATHIQ_REQUEST_TIMEOUT.
//  4. Command-line flags (-s, -u, -db, -i, -t, -l).
//
// JSON durations accept "3s" style strings or integer nanoseconds:
//
//	{
//	  "server_url": "https://ops.example.com",
//	  "sync_url": "/api/trips/sync",
//	  "db_path": "/var/lib/wathiq/trips.db",
//	  "online_check_interval": "5s",
//	  "request_timeout": "30s",
//	  "log_level": "debug"
//	}
package config
