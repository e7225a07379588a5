package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/peerdex/peerdex/internal/logger"
	"github.com/peerdex/peerdex/pkg/config"
	"github.com/peerdex/peerdex/pkg/metrics"
	promm "github.com/peerdex/peerdex/pkg/metrics/prometheus"
	"github.com/peerdex/peerdex/pkg/tracker/api"
	"github.com/peerdex/peerdex/pkg/tracker/peers"
	"github.com/peerdex/peerdex/pkg/tracker/service"
	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// storeProbeInterval is how often the catalog store connection is checked
// while the tracker runs.
const storeProbeInterval = 30 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the peerdex tracker",
	Long: `Start the peerdex tracker with the specified configuration.

The tracker answers peer RPCs on its API port and exposes health, admin
and (optionally) metrics endpoints on the same listener.

Examples:
  # Start with the default config location
  peerdex start

  # Start with a custom config file
  peerdex start --config /etc/peerdex/config.yaml

  # Override settings through the environment
  PEERDEX_LOGGING_LEVEL=DEBUG peerdex start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))
	logger.Info("log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "path", "/metrics")
	} else {
		logger.Info("metrics collection disabled")
	}

	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer func() { _ = st.Close() }()
	go st.RunHealthProbe(ctx, storeProbeInterval)

	table := peers.NewTable()
	svc := service.New(st, table, promm.NewTrackerMetrics())
	go svc.RunReaper(ctx)

	// Live log-level changes on config file edits.
	if path := configWatchPath(GetConfigFile()); path != "" {
		stopWatch, err := config.WatchLogging(path)
		if err != nil {
			logger.Warn("config watch unavailable", logger.KeyError, err)
		} else {
			defer func() { _ = stopWatch() }()
		}
	}

	server, err := api.NewServer(cfg.Tracker, svc, st, table)
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("tracker is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("tracker shutdown error", logger.KeyError, err)
			return err
		}
		logger.Info("tracker stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("tracker error", logger.KeyError, err)
			return err
		}
		logger.Info("tracker stopped")
	}

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// configWatchPath returns the config file to watch for live reloads, or
// empty when the tracker runs on defaults only.
func configWatchPath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}
