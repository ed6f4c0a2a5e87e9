// Package config persists mcpmon's tunable defaults — the delay knobs
// and verbosity a user would otherwise have to repeat as environment
// variables on every invocation. It never persists runtime/session
// state (the watched entry file, the wrapped command): those come from
// argv and env each run, per spec.md's Non-goals.
//
// Grounded on the teacher's internal/domain/profile.Store: a
// gopkg.in/yaml.v3-backed load/save over a single file, tolerating a
// missing file on first run rather than erroring.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted shape. Zero values mean "use the proxy's
// own built-in defaults" (internal/proxy.DefaultProxyConfig).
type Settings struct {
	RestartDelayMS int  `yaml:"restart_delay_ms,omitempty"`
	KillDelayMS    int  `yaml:"kill_delay_ms,omitempty"`
	ReadyDelayMS   int  `yaml:"ready_delay_ms,omitempty"`
	Verbose        bool `yaml:"verbose,omitempty"`
}

// Store reads and writes Settings to a single YAML file.
type Store struct {
	path string
}

// NewStore returns a Store backed by path. Callers typically pass
// DefaultPath().
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns <os.UserConfigDir()>/mcpmon/config.yaml. On Linux
// that directory is $XDG_CONFIG_HOME when set, else ~/.config; other
// platforms use their own per-user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mcpmon", "config.yaml"), nil
}

// Load returns the persisted settings, or a zero-valued Settings (no
// error) if the file doesn't exist yet — mirroring the teacher
// store's "non-existent file is not an error" load semantics.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Save writes settings to disk, creating the parent directory if
// needed.
func (s *Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// RestartDelay returns the persisted restart delay, or fallback if
// unset.
func (s Settings) RestartDelay(fallback time.Duration) time.Duration {
	if s.RestartDelayMS <= 0 {
		return fallback
	}
	return time.Duration(s.RestartDelayMS) * time.Millisecond
}

// KillDelay returns the persisted kill delay, or fallback if unset.
func (s Settings) KillDelay(fallback time.Duration) time.Duration {
	if s.KillDelayMS <= 0 {
		return fallback
	}
	return time.Duration(s.KillDelayMS) * time.Millisecond
}

// ReadyDelay returns the persisted ready delay, or fallback if unset.
func (s Settings) ReadyDelay(fallback time.Duration) time.Duration {
	if s.ReadyDelayMS <= 0 {
		return fallback
	}
	return time.Duration(s.ReadyDelayMS) * time.Millisecond
}
