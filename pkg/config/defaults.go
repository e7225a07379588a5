package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peerdex/peerdex/pkg/tracker/store"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyShutdownTimeoutDefaults(cfg)
	cfg.Database.ApplyDefaults()
	applyTrackerDefaults(cfg)
	applyPeerDefaults(&cfg.Peer)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyTrackerDefaults sets tracker server defaults.
func applyTrackerDefaults(cfg *Config) {
	if cfg.Tracker.Port == 0 {
		cfg.Tracker.Port = 4750
	}
	if cfg.Tracker.ReadTimeout == 0 {
		cfg.Tracker.ReadTimeout = 10 * time.Second
	}
	if cfg.Tracker.WriteTimeout == 0 {
		cfg.Tracker.WriteTimeout = 10 * time.Second
	}
	if cfg.Tracker.IdleTimeout == 0 {
		cfg.Tracker.IdleTimeout = 60 * time.Second
	}
}

// applyPeerDefaults sets peer agent defaults.
func applyPeerDefaults(cfg *PeerConfig) {
	if cfg.TrackerURL == "" {
		cfg.TrackerURL = "http://localhost:4750"
	}
	if cfg.DownloadDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DownloadDir = filepath.Join(home, "Downloads")
		} else {
			cfg.DownloadDir = "."
		}
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.TransferTimeout == 0 {
		cfg.TransferTimeout = 10 * time.Second
	}
}

// GetDefaultConfig returns a Config struct with all default values
// applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite, // Default to SQLite for single-node
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
