// Package config resolves gomon's runtime configuration from defaults,
// environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	appDir        = "gomon"
	settingsFile  = "gomon_config.toml"
	logFile       = "gomon.log"
	exportFile    = "gomon_export.csv"
	exportLock    = "gomon_export.lock"
	downloadsName = "Downloads"

	// DefaultInterval is the refresh tick period.
	DefaultInterval = time.Second
	// DefaultToastDuration is how long a toast stays visible.
	DefaultToastDuration = 3 * time.Second
)

// Config holds everything the program needs before the UI starts.
type Config struct {
	Interval      time.Duration
	ToastDuration time.Duration
	SettingsPath  string
	LogPath       string
	// ExportPath is empty when no download directory could be determined;
	// the export task reports that as a failure.
	ExportPath string
	// ExportLockPath serializes concurrent exports. It lives in the
	// config dir so nothing extra appears next to the exported file.
	ExportLockPath string
	NoColor        bool
	InitialFilter  string
}

// Default returns the configuration derived from the user's standard directories.
func Default() Config {
	cfg := Config{
		Interval:      DefaultInterval,
		ToastDuration: DefaultToastDuration,
	}

	// os.UserConfigDir 在 Linux 上通常是 ~/.config，在 macOS 上是 ~/Library/Application Support。
	if dir, err := os.UserConfigDir(); err == nil {
		cfg.SetConfigDir(dir)
	} else {
		cfg.SetConfigDir(os.TempDir())
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.ExportPath = filepath.Join(home, downloadsName, exportFile)
	}
	return cfg
}

// SetConfigDir points the settings, log and export lock files at dir/gomon.
func (c *Config) SetConfigDir(dir string) {
	base := filepath.Join(dir, appDir)
	c.SettingsPath = filepath.Join(base, settingsFile)
	c.LogPath = filepath.Join(base, logFile)
	c.ExportLockPath = filepath.Join(base, exportLock)
}

// FromEnv applies GOMON_* overrides on top of c.
func (c Config) FromEnv() Config {
	if v := os.Getenv("GOMON_CONFIG_DIR"); v != "" {
		c.SetConfigDir(v)
	}
	if v := os.Getenv("GOMON_EXPORT_PATH"); v != "" {
		c.ExportPath = v
	}
	if d, ok := parseMillis(os.Getenv("GOMON_INTERVAL_MS")); ok {
		c.Interval = d
	}
	// NO_COLOR (https://no-color.org/): any value disables color.
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		c.NoColor = true
	}
	return c
}

// Load returns Default with environment overrides applied.
func Load() Config {
	return Default().FromEnv()
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// parseMillis parses a positive integer number of milliseconds.
// Anything else, including values that would overflow a Duration,
// is rejected so the caller keeps its default.
func parseMillis(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return 0, false
		}
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms <= 0 || ms > maxMillis {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// EnsureDirs creates the directories holding the settings and log files.
func (c Config) EnsureDirs() error {
	for _, p := range []string{c.SettingsPath, c.LogPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
		}
	}
	return nil
}
