package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// PathsConfig locates the menu files.
type PathsConfig struct {
	// ProfileDir holds the user's writable menu files.
	ProfileDir string `yaml:"profile_dir"`
	// BundledDir overrides the embedded factory menus when set.
	BundledDir string `yaml:"bundled_dir,omitempty"`
}

// StorageConfig tunes how menu files are persisted.
type StorageConfig struct {
	SaveDelay    time.Duration `yaml:"save_delay"`
	BackupSuffix string        `yaml:"backup_suffix"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
