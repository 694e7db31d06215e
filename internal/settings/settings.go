// Package settings persists the user's display preferences between runs.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// Theme is the persisted display theme.
type Theme string

const (
	Light Theme = "Light"
	Dark  Theme = "Dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Settings is the on-disk settings record.
type Settings struct {
	Theme Theme `toml:"theme"`
}

// Default returns the settings used when nothing valid is on disk.
func Default() Settings {
	return Settings{Theme: Dark}
}

// Load reads the settings file at path.
//
// A missing file yields Default and a nil error. A file that cannot be read
// or parsed yields Default together with the error, so callers can report it
// without aborting startup.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("reading config file: %w", err)
	}

	var s Settings
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Default(), fmt.Errorf("parsing config file: %w", err)
	}
	if s.Theme != Light && s.Theme != Dark {
		return Default(), fmt.Errorf("parsing config file: unknown theme %q", s.Theme)
	}
	return s, nil
}

// Save writes s to path, creating the parent directory if needed.
// Concurrent writers are serialized through a lock file next to path.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking config file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("saving config file: %w", err)
	}
	return nil
}
