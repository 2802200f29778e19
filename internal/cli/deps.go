// Package cli provides the Cobra command tree and dependency wiring for
// the menustore CLI. This file defines the Dependencies struct
// (Composition Root) that wires the configuration, terminal UI and menu
// stores together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/menukit/menustore/internal/config"
	"github.com/menukit/menustore/internal/model"
	"github.com/menukit/menustore/internal/owner"
	"github.com/menukit/menustore/internal/resources"
	"github.com/menukit/menustore/internal/storage"
	"github.com/menukit/menustore/internal/ui"
)

// loadTimeout bounds how long a command waits for background file work.
const loadTimeout = 30 * time.Second

// ErrUnknownStore is returned for a store name with no bundled menus.
var ErrUnknownStore = errors.New("unknown menu store")

// Dependencies holds the services used by CLI commands. It is the only
// place where concrete types are instantiated and wired together.
type Dependencies struct {
	Config   *config.Manager
	Theme    *ui.Theme
	Terminal *ui.Terminal
	Confirm  ui.Confirmer
	Progress *ui.Progress
	Logger   *slog.Logger
}

// NewDependencies wires the default dependencies. Logging and colors are
// configured later, once flags and the configuration file are known.
func NewDependencies() *Dependencies {
	theme := ui.NewTheme(false)
	terminal := ui.NewTerminal()
	return &Dependencies{
		Config:   config.NewManager(),
		Theme:    theme,
		Terminal: terminal,
		Confirm:  ui.NewPrompt(terminal, theme),
		Progress: ui.NewProgress(theme, terminal, os.Stderr),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// setupLogging installs the slog handler selected by the configuration.
// Logs go to w so they never mix with command output.
func (d *Dependencies) setupLogging(cfg *config.Config, w io.Writer) {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	d.Logger = slog.New(handler)
	slog.SetDefault(d.Logger)
}

// bundledFS returns the factory menus: the configured directory when set,
// otherwise the embedded copies.
func (d *Dependencies) bundledFS() fs.FS {
	if cfg := d.Config.Get(); cfg != nil && cfg.Paths.BundledDir != "" {
		return os.DirFS(cfg.Paths.BundledDir)
	}
	return resources.FS()
}

// store is one open menu store driven by its own owner loop.
type store struct {
	loop  *owner.Loop
	model *model.Model
	path  string
}

// openStore creates the model for the named store and waits for it to
// load. The caller must call close.
func (d *Dependencies) openStore(ctx context.Context, name string) (*store, error) {
	res, ok := resources.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownStore, name, strings.Join(resources.Names(), ", "))
	}
	cfg := d.Config.Get()
	if cfg == nil {
		return nil, config.ErrNotInitialized
	}

	loop := owner.NewLoop()
	path := filepath.Join(cfg.Paths.ProfileDir, res.File)
	st := storage.New(storage.Config{
		ProfilePath:  path,
		BundledFS:    d.bundledFS(),
		BundledName:  res.File,
		SaveDelay:    cfg.Storage.SaveDelay,
		BackupSuffix: cfg.Storage.BackupSuffix,
	}, loop, storage.WithLogger(d.Logger.With("module", "menu.storage")))
	m := model.New(name, st, model.WithLogger(d.Logger.With("module", "menu.model")))

	s := &store{loop: loop, model: m, path: path}
	m.Load()
	if err := s.wait(ctx, func() bool { return m.State() != model.StateLoading }); err != nil {
		m.Close()
		return nil, err
	}
	if !m.Loaded() {
		err := m.LoadErr()
		m.Close()
		return nil, fmt.Errorf("load %s menus: %w", name, err)
	}
	return s, nil
}

// wait runs the owner loop until cond holds.
func (s *store) wait(ctx context.Context, cond func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := s.loop.RunUntil(ctx, cond); err != nil {
		return fmt.Errorf("waiting for %s menus: %w", s.model.Name(), err)
	}
	return nil
}

// close flushes pending edits to disk.
func (s *store) close() {
	s.model.Close()
}
