package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"suimu/internal/boundary"
	"suimu/internal/config"
	"suimu/internal/history"
	"suimu/internal/httpapi"
	"suimu/internal/ipc"
	"suimu/internal/logging"
	"suimu/internal/metrics"
)

// ErrAlreadyRunning is returned by Start when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another suimu daemon instance is already running")

// Daemon serves boundary commands over IPC and HTTP and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	logPath string

	svc      *boundary.Service
	history  *history.Store
	recorder *metrics.Recorder

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	ipc       *ipc.Server
	http      *httpapi.Server
	httpAddr  string
	startedAt time.Time
	cancel    context.CancelFunc

	running     atomic.Bool
	invocations atomic.Int64
	failures    atomic.Int64
}

// New constructs a daemon and opens its journal. Nothing listens until
// Start.
func New(cfg *config.Config, logger *slog.Logger, logPath string) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		logPath:  logPath,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	observers := []boundary.Observer{boundary.ObserverFunc(d.count)}
	if cfg.Server.Metrics {
		recorder, err := metrics.NewRecorder()
		if err != nil {
			return nil, fmt.Errorf("create metrics recorder: %w", err)
		}
		d.recorder = recorder
		observers = append(observers, recorder)
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, logger)
		if err != nil {
			return nil, err
		}
		d.history = store
		observers = append(observers, store)
	}
	d.svc = boundary.NewService(logger, observers...)
	return d, nil
}

func (d *Daemon) count(_ context.Context, inv boundary.Invocation) {
	d.invocations.Add(1)
	if !inv.OK {
		d.failures.Add(1)
	}
}

// Service returns the observed boundary service.
func (d *Daemon) Service() *boundary.Service {
	return d.svc
}

// History returns the journal, or nil when history is disabled.
func (d *Daemon) History() *history.Store {
	return d.history
}

// HTTPAddr returns the bound HTTP address, empty when HTTP is disabled.
func (d *Daemon) HTTPAddr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.httpAddr
}

// Start acquires the lock, prunes the journal and starts the transports.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.startTransports(runCtx); err != nil {
		cancel()
		d.stopTransports()
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.mu.Unlock()
	d.running.Store(true)

	d.pruneHistory(runCtx)
	d.logger.Info("suimu daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("socket", d.cfg.Paths.SocketPath),
		logging.String("http", d.HTTPAddr()),
	)
	return nil
}

func (d *Daemon) startTransports(ctx context.Context) error {
	ipcServer, err := ipc.NewServer(ctx, d.cfg.Paths.SocketPath, d.svc, d.Status, d.logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	ipcServer.Serve()

	d.mu.Lock()
	d.ipc = ipcServer
	d.mu.Unlock()

	if d.cfg.Server.HTTPBind == "" {
		return nil
	}
	httpServer := httpapi.NewServer(d.svc, d.metricsHandler(), d.logger)
	addr, err := httpServer.Start(ctx, d.cfg.Server.HTTPBind)
	if err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	d.mu.Lock()
	d.http = httpServer
	d.httpAddr = addr
	d.mu.Unlock()
	return nil
}

func (d *Daemon) metricsHandler() http.Handler {
	if d.recorder == nil {
		return nil
	}
	return d.recorder.Handler()
}

func (d *Daemon) pruneHistory(ctx context.Context) {
	if d.history == nil || d.cfg.History.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -d.cfg.History.RetentionDays)
	removed, err := d.history.Prune(ctx, cutoff)
	if err != nil {
		logging.WarnWithContext(d.logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old journal entries were kept"),
			logging.String(logging.FieldErrorHint, "check the history database is writable"),
		)
		return
	}
	if removed > 0 {
		d.logger.Info("history pruned",
			logging.String(logging.FieldEventType, "history_pruned"),
			logging.Int64("removed", removed),
			logging.Int("retention_days", d.cfg.History.RetentionDays),
		)
	}
}

// Stop closes the transports and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	d.stopTransports()

	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next daemon start may report a running instance"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("suimu daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

func (d *Daemon) stopTransports() {
	d.mu.Lock()
	ipcServer, httpServer := d.ipc, d.http
	d.ipc, d.http, d.httpAddr = nil, nil, ""
	d.mu.Unlock()

	if httpServer != nil {
		httpServer.Stop()
	}
	if ipcServer != nil {
		ipcServer.Close()
	}
}

// Close stops the daemon and closes the journal.
func (d *Daemon) Close() error {
	d.Stop()
	if d.history != nil {
		return d.history.Close()
	}
	return nil
}

// Status reports runtime information for the IPC Status method.
func (d *Daemon) Status(_ context.Context) ipc.StatusResponse {
	d.mu.Lock()
	startedAt, httpAddr := d.startedAt, d.httpAddr
	d.mu.Unlock()

	status := ipc.StatusResponse{
		PID:         os.Getpid(),
		Socket:      d.cfg.Paths.SocketPath,
		LockPath:    d.lockPath,
		StartedAt:   startedAt,
		Invocations: d.invocations.Load(),
		Failures:    d.failures.Load(),
		HTTPBind:    httpAddr,
		LogPath:     d.logPath,
		Commands:    d.svc.Commands(),
	}
	if d.history != nil {
		status.HistoryPath = d.history.Path()
	}
	return status
}
