package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stagehand/internal/api"
	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/logging"
	"stagehand/internal/notifications"
	"stagehand/internal/views"
	"stagehand/internal/workflow"
)

// Daemon coordinates the catalog services and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	engine  *workflow.Engine
	songSvc *api.SongService
	logPath string

	lockPath string
	lock     *flock.Flock

	apiSrv *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	CatalogPath  string
	LockFilePath string
	Pipeline     api.PipelineStatus
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cache := views.NewCache(logger)
	engine := workflow.NewEngineWithNotifier(cfg, store, logger, notifications.NewService(cfg), cache)

	lockPath := filepath.Join(cfg.Paths.LogDir, "stagehandd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   engine,
		songSvc:  api.NewSongService(store, cache),
		logPath:  filepath.Join(cfg.Paths.LogDir, "stagehand.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	return d, nil
}

// Start acquires the daemon lock and launches the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stagehand daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})

	if d.apiSrv != nil {
		if err := d.apiSrv.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("stagehand daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	if d.done != nil {
		close(d.done)
		d.done = nil
	}
	d.logger.Info("stagehand daemon stopped")
}

// Done reports daemon termination: the returned channel closes when Stop
// completes. It is nil before Start.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Store exposes the catalog store for IPC handlers.
func (d *Daemon) Store() *catalog.Store {
	return d.store
}

// Engine exposes the workflow engine for IPC handlers.
func (d *Daemon) Engine() *workflow.Engine {
	return d.engine
}

// Songs exposes the read service for IPC handlers.
func (d *Daemon) Songs() *api.SongService {
	return d.songSvc
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (catalog.DatabaseHealth, error) {
	if d.store == nil {
		return catalog.DatabaseHealth{}, errors.New("catalog store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// APIAddr returns the bound API address, or "" before Start.
func (d *Daemon) APIAddr() string {
	if d.apiSrv == nil {
		return ""
	}
	return d.apiSrv.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	pipeline, err := d.songSvc.Status(ctx)
	if err != nil {
		d.logger.Warn("pipeline status unavailable", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		CatalogPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Pipeline:     pipeline,
	}
}

// PID reports the daemon process id for status output.
func (d *Daemon) PID() int {
	return os.Getpid()
}
