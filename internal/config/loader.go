package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader reads configuration from a YAML file.
// It is thread-safe via sync.RWMutex.
type Loader struct {
	mu         sync.RWMutex
	fromFile   bool
	loadedPath string
}

// NewLoader creates a new Loader instance.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the configuration file at path and returns a Config with
// defaults applied for missing fields. A missing file yields defaults.
func (l *Loader) Load(path string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.fromFile = false
	l.loadedPath = filepath.Clean(path)
	cfg := NewDefaultConfig()

	loaded, err := loadYAMLFile(l.loadedPath, cfg)
	if err != nil {
		return nil, err
	}
	if !loaded {
		slog.Debug("config file not found, using defaults", "path", l.loadedPath)
		return cfg, nil
	}
	l.fromFile = true
	return cfg, nil
}

// FromFile reports whether the last Load found a configuration file.
func (l *Loader) FromFile() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fromFile
}

// loadYAMLFile reads a YAML file and unmarshals it into target, keeping
// target's values for keys the file omits. Returns (true, nil) if the file
// was found and parsed, (false, nil) if the file does not exist, or
// (false, error) on failure.
func loadYAMLFile(path string, target any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("parse %s: %w: %v", filepath.Base(path), ErrInvalidYAML, err)
	}

	return true, nil
}
