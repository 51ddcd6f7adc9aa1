// Package cli provides the interactive trip-report client.
//
// It wires configuration, the local SQLite queue, the sync services and a
// small REPL. A background watcher pings the server; whenever the client
// comes back online with reports still queued it drains the queue.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
