package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sultan0alshami/wathiq-sub001/internal/client/client"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/config"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/queue"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/repositories/metadata"
	"github.com/sultan0alshami/wathiq-sub001/internal/client/services"
	"github.com/sultan0alshami/wathiq-sub001/internal/common"
	"github.com/sultan0alshami/wathiq-sub001/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	meta        metadata.Repository
	store       *queue.Store
	authService services.AuthService
	syncService services.SyncService
	tripService services.TripService

	mu   sync.RWMutex
	mode Mode

	in  io.Reader
	out io.Writer
}

// NewApp opens the local database, builds the HTTP client and services and
// restores a previously saved access token.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init local database: %w", err)
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.SyncURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := newApp(ctx, c, logger, db, apiClient)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, tc client.TripClient) (*App, error) {
	repos := client.NewRepositories(db)
	store := queue.NewStore(repos.Metadata, logger)
	ss := services.NewSyncService(tc, store, logger)

	a := &App{
		config:      c,
		logger:      logger.With("module", "cli"),
		db:          db,
		meta:        repos.Metadata,
		store:       store,
		authService: services.NewAuthService(tc, repos.Metadata),
		syncService: ss,
		tripService: services.NewTripService(ss, store, logger),
		mode:        ModeOffline,
		in:          os.Stdin,
		out:         os.Stdout,
	}

	found, err := a.authService.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		a.logger.Debug(ctx, "access token restored")
	}
	return a, nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// setMode switches the mode and returns the previous one.
func (a *App) setMode(ctx context.Context, mode Mode) Mode {
	a.mu.Lock()
	prev := a.mode
	a.mode = mode
	a.mu.Unlock()

	if prev != mode {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
	return prev
}

func (a *App) getStatus() string {
	return fmt.Sprintf("(%s)", a.Mode())
}

// Run starts the connectivity watcher and blocks in the REPL until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Wathiq trip client (type 'help' for commands)")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in))

	cancel()
	wg.Wait()
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// StartOnlineStatusWatcher pings the server every interval. When the
// client comes online with reports still queued it drains the queue.
// A non-positive interval falls back to config.DefaultOnlineCheckInterval.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultOnlineCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkConnectivity(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkConnectivity(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}

	if prev := a.setMode(ctx, ModeOnline); prev != ModeOnline {
		a.autoSync(ctx)
	}
}

func (a *App) autoSync(ctx context.Context) {
	if a.store.Len(ctx) == 0 {
		return
	}

	res, err := a.syncService.SyncQueue(ctx, nil)
	if errors.Is(err, common.ErrSyncInProgress) {
		a.logger.Debug(ctx, "auto sync skipped, run in progress")
		return
	}
	if err != nil {
		a.logger.Error(ctx, "auto sync failed", "error", err)
		return
	}
	a.logger.Info(ctx, "auto sync done", "success", res.Success, "failed", res.Failed)
}
