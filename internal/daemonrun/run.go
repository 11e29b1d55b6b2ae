// Package daemonrun hosts the shared daemon runtime loop used by the
// stagehandd binary and the CLI's foreground run command.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"stagehand/internal/catalog"
	"stagehand/internal/config"
	"stagehand/internal/daemon"
	"stagehand/internal/ipc"
	"stagehand/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// SocketPath overrides the IPC socket location. Defaults to
	// stagehandd.sock in the configured log directory.
	SocketPath string
}

// SocketPath resolves the IPC socket location for a configuration.
func SocketPath(cfg *config.Config) string {
	if cfg == nil {
		return filepath.Join(os.TempDir(), "stagehandd.sock")
	}
	return filepath.Join(cfg.Paths.LogDir, "stagehandd.sock")
}

// Run starts the stagehand daemon runtime loop and blocks until the context
// is canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "stagehandd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return err
	}
	defer store.Close()

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := opts.SocketPath
	if socketPath == "" {
		socketPath = SocketPath(cfg)
	}
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	select {
	case <-signalCtx.Done():
	case <-d.Done():
	}
	logger.Info("stagehand daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
