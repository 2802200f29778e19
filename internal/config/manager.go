package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfigPath = "MENUSTORE_CONFIG"
	EnvProfileDir = "MENUSTORE_PROFILE_DIR"
	EnvBundledDir = "MENUSTORE_BUNDLED_DIR"
	EnvLogLevel   = "MENUSTORE_LOG_LEVEL"
	EnvLogFormat  = "MENUSTORE_LOG_FORMAT"
	EnvSaveDelay  = "MENUSTORE_SAVE_DELAY"
)

// managerState represents the lifecycle state of the Manager.
type managerState int

const (
	stateUninitialized managerState = iota
	stateInitialized
)

// Manager provides thread-safe configuration management.
// It must be initialized via Load() before use.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	fromFile bool
	state    managerState
	loader   *Loader
}

// NewManager creates a new Manager instance in uninitialized state.
func NewManager() *Manager {
	return &Manager{
		loader: NewLoader(),
		state:  stateUninitialized,
	}
}

// ResolvePath picks the configuration file: an explicit path wins, then
// MENUSTORE_CONFIG, then the default location.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return filepath.Clean(explicit)
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return filepath.Clean(env)
	}
	return DefaultConfigPath()
}

// Load reads the configuration file at path. It merges file values with
// compiled defaults and applies environment variable overrides. The
// configuration is validated before being stored.
func (m *Manager) Load(path string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, err := m.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Environment variables have higher priority than files.
	errs := applyEnvOverrides(cfg)
	if verr := Validate(cfg); verr != nil {
		if ve, ok := verr.(*ValidationErrors); ok {
			errs = append(errs, ve.Errors...)
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	m.config = cfg
	m.path = filepath.Clean(path)
	m.fromFile = m.loader.FromFile()
	m.state = stateInitialized

	return cfg, nil
}

// Get returns the current in-memory configuration.
// Returns nil if the manager has not been initialized via Load().
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Path returns the configuration file path given to Load.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// FromFile reports whether Load found a configuration file.
func (m *Manager) FromFile() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fromFile
}

// Set replaces the in-memory configuration after validating it.
// Returns ErrNotInitialized if Load() has not been called.
func (m *Manager) Set(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}
	if err := Validate(&cfg); err != nil {
		return err
	}
	m.config = &cfg
	return nil
}

// Save persists the current configuration to disk atomically using
// temp file + os.Rename.
// Returns ErrNotInitialized if Load() has not been called.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == stateUninitialized {
		return ErrNotInitialized
	}

	data, err := Marshal(m.config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := atomicWrite(m.path, data); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	m.fromFile = true
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have higher priority than file-based values.
func applyEnvOverrides(cfg *Config) []ValidationError {
	if dir := os.Getenv(EnvProfileDir); dir != "" {
		cfg.Paths.ProfileDir = dir
	}
	if dir := os.Getenv(EnvBundledDir); dir != "" {
		cfg.Paths.BundledDir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Log.Format = format
	}
	if delay := os.Getenv(EnvSaveDelay); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return []ValidationError{{
				Field:   EnvSaveDelay,
				Message: "not a Go duration (example: 2.5s)",
				Value:   delay,
				Wrapped: ErrInvalidDuration,
			}}
		}
		cfg.Storage.SaveDelay = d
	}
	return nil
}

// atomicWrite writes data to a file atomically using temp file + os.Rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".menustore-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // cleanup on error path

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmpName, path)
}
