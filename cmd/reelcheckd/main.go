// Command reelcheckd runs the verification daemon: it owns the step cache
// and serves the HTTP/WebSocket API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"reelcheck/internal/api"
	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, loadedFrom, usedDefaults, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if usedDefaults {
		logger.Warn("no config file found, running with defaults")
	} else {
		logger.Info("config loaded", logging.String("path", loadedFrom))
	}

	// One daemon per data directory; a second instance would race the
	// SQLite store.
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "reelcheckd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another reelcheckd instance already holds %s", lock.Path())
	}
	defer lock.Unlock() //nolint:errcheck

	orchestrator, store, err := pipeline.Build(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer store.Close()

	server := api.NewServer(cfg, orchestrator, store, logger)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("reelcheckd shutting down")
	return nil
}
