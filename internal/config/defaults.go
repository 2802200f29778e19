package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	// DefaultFileName is the configuration file looked up in the profile directory.
	DefaultFileName = "menustore.yaml"

	// DefaultSaveDelay is the debounce window between an edit and its write.
	DefaultSaveDelay = 2500 * time.Millisecond

	// DefaultBackupSuffix decorates the profile file name for the backup copy.
	DefaultBackupSuffix = ".bak"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default slog handler.
	DefaultLogFormat = "text"

	// MaxSaveDelay bounds the debounce window.
	MaxSaveDelay = time.Minute

	appDirName = "menustore"
)

// Valid log levels and formats.
var (
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"text", "json"}
)

// NewDefaultConfig returns a Config with every field set to its default.
func NewDefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ProfileDir: DefaultProfileDir(),
		},
		Storage: StorageConfig{
			SaveDelay:    DefaultSaveDelay,
			BackupSuffix: DefaultBackupSuffix,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultProfileDir returns the per-user directory for menu files,
// falling back to a relative directory when the OS reports none.
func DefaultProfileDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + appDirName
	}
	return filepath.Join(base, appDirName)
}

// DefaultConfigPath returns the configuration file inside the default
// profile directory.
func DefaultConfigPath() string {
	return filepath.Join(DefaultProfileDir(), DefaultFileName)
}
