package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDefaultConfig()
	if cfg.Storage.SaveDelay != DefaultSaveDelay {
		t.Errorf("SaveDelay: got %v, want %v", cfg.Storage.SaveDelay, DefaultSaveDelay)
	}
	if cfg.Storage.BackupSuffix != ".bak" {
		t.Errorf("BackupSuffix: got %q, want .bak", cfg.Storage.BackupSuffix)
	}
	if cfg.Paths.ProfileDir == "" {
		t.Error("ProfileDir should not be empty")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if m.loader == nil {
		t.Error("NewManager() should initialize loader")
	}
	if m.state != stateUninitialized {
		t.Errorf("expected state %d (uninitialized), got %d", stateUninitialized, m.state)
	}
	if m.Get() != nil {
		t.Error("Get() before Load() should return nil")
	}
	if err := m.Save(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Save() before Load(): got %v, want ErrNotInitialized", err)
	}
	if err := m.Set(*NewDefaultConfig()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Set() before Load(): got %v, want ErrNotInitialized", err)
	}
}

func TestManagerLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
paths:
  profile_dir: /var/lib/menus
storage:
  save_delay: 500ms
log:
  format: json
`)
	m := NewManager()
	cfg, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.ProfileDir != "/var/lib/menus" {
		t.Errorf("ProfileDir: got %q", cfg.Paths.ProfileDir)
	}
	if cfg.Storage.SaveDelay != 500*time.Millisecond {
		t.Errorf("SaveDelay: got %v, want 500ms", cfg.Storage.SaveDelay)
	}
	if cfg.Storage.BackupSuffix != DefaultBackupSuffix {
		t.Errorf("omitted BackupSuffix should keep default, got %q", cfg.Storage.BackupSuffix)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log: got %+v", cfg.Log)
	}
	if !m.FromFile() || m.Path() != path {
		t.Errorf("FromFile=%v Path=%q", m.FromFile(), m.Path())
	}
}

func TestManagerLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	m := NewManager()
	cfg, err := m.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.SaveDelay != DefaultSaveDelay {
		t.Errorf("SaveDelay: got %v", cfg.Storage.SaveDelay)
	}
	if m.FromFile() {
		t.Error("FromFile should be false for a missing file")
	}
}

func TestManagerLoadInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "paths: [unclosed\n")
	_, err := NewManager().Load(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("got %v, want ErrInvalidYAML", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		want   error
	}{
		{"empty profile dir", func(c *Config) { c.Paths.ProfileDir = " " }, "paths.profile_dir", ErrInvalidConfig},
		{"zero delay", func(c *Config) { c.Storage.SaveDelay = 0 }, "storage.save_delay", ErrInvalidDuration},
		{"huge delay", func(c *Config) { c.Storage.SaveDelay = time.Hour }, "storage.save_delay", ErrInvalidDuration},
		{"empty suffix", func(c *Config) { c.Storage.BackupSuffix = "" }, "storage.backup_suffix", ErrInvalidConfig},
		{"suffix with separator", func(c *Config) { c.Storage.BackupSuffix = "/x" }, "storage.backup_suffix", ErrInvalidConfig},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level", ErrInvalidConfig},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format", ErrInvalidConfig},
		{"dynamic token", func(c *Config) { c.Paths.ProfileDir = "${HOME}/menus" }, "paths.profile_dir", ErrDynamicToken},
		{"template token", func(c *Config) { c.Paths.BundledDir = "{{dir}}" }, "paths.bundled_dir", ErrDynamicToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("every validation failure should match ErrInvalidConfig")
			}
			var verrs *ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected *ValidationErrors, got %T", err)
			}
			if verrs.Errors[0].Field != tt.field {
				t.Errorf("field: got %q, want %q", verrs.Errors[0].Field, tt.field)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	e := &ValidationErrors{Errors: []ValidationError{
		{Field: "log.level", Message: "bad", Value: "trace"},
		{Field: "paths.profile_dir", Message: "required"},
	}}
	msg := e.Error()
	for _, want := range []string{"2 error(s)", `"log.level"`, "(got: trace)", `"paths.profile_dir": required`} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if (&ValidationErrors{}).Error() != "validation: no errors" {
		t.Error("empty ValidationErrors message")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvProfileDir, "/tmp/profile")
	t.Setenv(EnvBundledDir, "/tmp/bundled")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvSaveDelay, "1s")

	path := writeConfig(t, "paths:\n  profile_dir: /from/file\n")
	cfg, err := NewManager().Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.ProfileDir != "/tmp/profile" || cfg.Paths.BundledDir != "/tmp/bundled" {
		t.Errorf("Paths: got %+v", cfg.Paths)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
	if cfg.Storage.SaveDelay != time.Second {
		t.Errorf("SaveDelay: got %v", cfg.Storage.SaveDelay)
	}
}

func TestEnvOverrideBadDuration(t *testing.T) {
	t.Setenv(EnvSaveDelay, "soon")

	_, err := NewManager().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("got %v, want ErrInvalidDuration", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/menustore.yaml")

	if got := ResolvePath("./custom.yaml"); got != "custom.yaml" {
		t.Errorf("explicit: got %q", got)
	}
	if got := ResolvePath(""); got != "/etc/menustore.yaml" {
		t.Errorf("env: got %q", got)
	}
}

func TestManagerSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	m := NewManager()
	if _, err := m.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cfg := *m.Get()
	cfg.Storage.SaveDelay = 3 * time.Second
	cfg.Log.Level = "warn"
	if err := m.Set(cfg); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "save_delay: 3s") {
		t.Errorf("duration should be written as a string:\n%s", data)
	}

	reloaded, err := NewManager().Load(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if reloaded.Storage.SaveDelay != 3*time.Second || reloaded.Log.Level != "warn" {
		t.Errorf("reloaded: got %+v", reloaded)
	}

	bad := cfg
	bad.Log.Format = "xml"
	if err := m.Set(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Set(invalid): got %v, want ErrInvalidConfig", err)
	}
}
