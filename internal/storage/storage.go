package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/menukit/menustore/internal/codec"
	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/owner"
	"github.com/menukit/menustore/internal/upgrade"
	"github.com/menukit/menustore/internal/worker"
)

// Defaults applied when Config leaves a field empty.
const (
	DefaultSaveDelay    = 2500 * time.Millisecond
	DefaultBackupSuffix = ".bak"
)

// BackupState gates the one-time backup copy made before the first write.
type BackupState int

const (
	// BackupNone means no save has been requested yet.
	BackupNone BackupState = iota
	// BackupDispatched means the backup copy is queued on the lane.
	BackupDispatched
	// BackupAttempted means the backup ran (or was not needed); saves go
	// straight to the debounce timer.
	BackupAttempted
)

// String returns a readable state name.
func (b BackupState) String() string {
	switch b {
	case BackupNone:
		return "none"
	case BackupDispatched:
		return "dispatched"
	case BackupAttempted:
		return "attempted"
	default:
		return fmt.Sprintf("backup(%d)", int(b))
	}
}

// Config locates the files backing one menu store.
type Config struct {
	// ProfilePath is the user's writable menu file.
	ProfilePath string
	// BundledFS and BundledName locate the read-only factory defaults.
	BundledFS   fs.FS
	BundledName string
	// SaveDelay is the debounce window for writes.
	SaveDelay time.Duration
	// BackupSuffix decorates ProfilePath to name the backup copy.
	BackupSuffix string
}

// BackupPath returns the path of the backup copy.
func (c Config) BackupPath() string {
	return c.ProfilePath + c.BackupSuffix
}

// LoadRequest describes one load.
type LoadRequest struct {
	// ForceBundled skips the profile file and any upgrade.
	ForceBundled bool
	// Done receives the result on the owning goroutine. It is not called
	// when the storage is closed before the load completes.
	Done func(*LoadResult)
}

// LoadResult is the outcome of a load.
type LoadResult struct {
	Root    *menu.Node
	Control *menu.Control
	// FromBundled is set when the tree came from the factory defaults.
	FromBundled bool
	// Upgraded is set when newer bundled content was merged in.
	Upgraded bool
	Report   upgrade.Report
	Err      error

	backedUp bool
}

// Stats counts storage activity. Fields are cumulative.
type Stats struct {
	Loads    int64
	Writes   int64
	Backups  int64
	Upgrades int64
	Failures int64
}

type stats struct {
	loads, writes, backups, upgrades, failures atomic.Int64
}

// Storage owns one profile file, its backup copy and the lane that
// touches them. Methods other than Stats must be called on the owner.
type Storage struct {
	cfg    Config
	logger *slog.Logger
	owner  owner.Poster
	ids    menu.IDAllocator
	lane   *worker.Lane
	stats  stats

	// Owner-only state.
	backup       BackupState
	serializer   func() ([]byte, error)
	timer        *time.Timer
	timerGen     uint64
	writePending bool
	closed       bool
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = l
	}
}

// WithIDs sets the allocator used for decoded nodes.
func WithIDs(ids menu.IDAllocator) Option {
	return func(s *Storage) {
		s.ids = ids
	}
}

// New creates a Storage whose completions are posted to post.
func New(cfg Config, post owner.Poster, opts ...Option) *Storage {
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = DefaultSaveDelay
	}
	if cfg.BackupSuffix == "" {
		cfg.BackupSuffix = DefaultBackupSuffix
	}
	s := &Storage{
		cfg:    cfg,
		owner:  post,
		ids:    menu.DefaultIDs,
		logger: slog.Default().With("module", "menu.storage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("file", cfg.ProfilePath)
	s.lane = worker.NewLane(cfg.ProfilePath, worker.WithLogger(s.logger))
	return s
}

// Config returns the storage configuration with defaults applied.
func (s *Storage) Config() Config { return s.cfg }

// BackupState returns the backup gate state.
func (s *Storage) BackupState() BackupState { return s.backup }

// HasPendingWrite reports whether a debounced write is outstanding.
func (s *Storage) HasPendingWrite() bool { return s.writePending }

// Stats returns a snapshot of the activity counters. It is safe to call
// from any goroutine.
func (s *Storage) Stats() Stats {
	return Stats{
		Loads:    s.stats.loads.Load(),
		Writes:   s.stats.writes.Load(),
		Backups:  s.stats.backups.Load(),
		Upgrades: s.stats.upgrades.Load(),
		Failures: s.stats.failures.Load(),
	}
}

// SetSerializer attaches the function that encodes the live model. Pass
// nil when the model goes away; pending writes then become no-ops.
func (s *Storage) SetSerializer(fn func() ([]byte, error)) {
	s.serializer = fn
}

// Load reads the menus on the lane and posts the result to the owner.
func (s *Storage) Load(req LoadRequest) {
	if s.closed {
		return
	}
	err := s.lane.Submit(func() {
		res := s.load(req.ForceBundled)
		s.stats.loads.Add(1)
		if res.Upgraded {
			s.persistUpgrade(res)
		}
		s.deliver(req.Done, res)
	})
	if err != nil {
		s.logger.Warn("load not scheduled", "error", err)
	}
}

// LoadBundled parses only the factory defaults and posts the result.
func (s *Storage) LoadBundled(done func(*LoadResult)) {
	s.Load(LoadRequest{ForceBundled: true, Done: done})
}

// deliver posts res to the owner unless the storage is closed by the time
// the task runs.
func (s *Storage) deliver(done func(*LoadResult), res *LoadResult) {
	s.owner.Post(func() {
		if s.closed {
			return
		}
		if res.backedUp && s.backup == BackupNone {
			s.backup = BackupAttempted
		}
		if done != nil {
			done(res)
		}
	})
}

// load runs on the lane.
func (s *Storage) load(forceBundled bool) *LoadResult {
	bundled, bundledErr := fs.ReadFile(s.cfg.BundledFS, s.cfg.BundledName)
	if bundledErr != nil {
		s.logger.Error("bundled menus unreadable", "name", s.cfg.BundledName, "error", bundledErr)
	}
	if forceBundled {
		return s.parseBundled(bundled, bundledErr)
	}

	profile, err := os.ReadFile(s.cfg.ProfilePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("profile menus unreadable, using bundled", "error", err)
		}
		return s.parseBundled(bundled, bundledErr)
	}

	res := &LoadResult{}
	if bundledErr == nil {
		if merged, report, ok := s.maybeUpgrade(profile, bundled); ok {
			profile = merged
			res.Upgraded = true
			res.Report = report
		}
	}

	root, control, err := codec.Decode(profile, codec.Options{IDs: s.ids})
	if err != nil {
		s.logger.Warn("profile menus invalid, using bundled", "upgraded", res.Upgraded, "error", err)
		s.stats.failures.Add(1)
		return s.parseBundled(bundled, bundledErr)
	}
	res.Root, res.Control = root, control
	return res
}

// maybeUpgrade merges bundled into profile when the bundled version is
// strictly newer. ok is false when no merge took place.
func (s *Storage) maybeUpgrade(profile, bundled []byte) (merged []byte, report upgrade.Report, ok bool) {
	profileVersion, err := codec.ReadVersion(profile)
	switch {
	case errors.Is(err, codec.ErrNoControl):
		profileVersion = ""
	case err != nil:
		// Unparseable profile; the decode that follows falls back.
		return nil, report, false
	}

	bundledVersion, err := codec.ReadVersion(bundled)
	if err != nil {
		s.logger.Error("bundled menus have no version, upgrade skipped", "error", err)
		return nil, report, false
	}

	need, err := upgrade.NeedsUpgrade(bundledVersion, profileVersion)
	if err != nil {
		s.logger.Error("upgrade skipped", "error", err)
		return nil, report, false
	}
	if !need {
		return nil, report, false
	}

	merged, report, err = upgrade.Merge(profile, bundled)
	if err != nil {
		s.logger.Error("upgrade merge failed, loading profile as is", "error", err)
		return nil, report, false
	}
	s.logger.Info("menus upgraded",
		"from", report.FromVersion,
		"to", report.ToVersion,
		"added", len(report.Added),
		"removed", len(report.Removed),
	)
	return merged, report, true
}

func (s *Storage) parseBundled(bundled []byte, readErr error) *LoadResult {
	if readErr != nil {
		return &LoadResult{Err: fmt.Errorf("%w: %v", ErrNoBundle, readErr)}
	}
	root, control, err := codec.Decode(bundled, codec.Options{Bundle: true, IDs: s.ids})
	if err != nil {
		s.logger.Error("bundled menus invalid", "name", s.cfg.BundledName, "error", err)
		s.stats.failures.Add(1)
		return &LoadResult{Err: fmt.Errorf("%w: %w", ErrNoBundle, err)}
	}
	return &LoadResult{Root: root, Control: control, FromBundled: true}
}

// persistUpgrade runs on the lane before an upgraded load is delivered, so
// the merged menus are durable before any edit. The pre-upgrade file is kept
// as the backup copy.
func (s *Storage) persistUpgrade(res *LoadResult) {
	if copied, err := copyFile(s.cfg.ProfilePath, s.cfg.BackupPath()); err != nil {
		s.logger.Warn("pre-upgrade backup failed", "error", err)
	} else if copied {
		s.stats.backups.Add(1)
		res.backedUp = true
	}
	data, err := codec.Encode(res.Root, res.Control)
	if err != nil {
		s.logger.Error("encode upgraded menus", "error", err)
		return
	}
	s.write(data)
	s.stats.upgrades.Add(1)
}

// ScheduleSave requests a debounced write of the current model.
func (s *Storage) ScheduleSave() {
	if s.closed {
		return
	}
	s.writePending = true

	switch s.backup {
	case BackupNone:
		s.backup = BackupDispatched
		err := s.lane.Submit(func() {
			if copied, err := copyFile(s.cfg.ProfilePath, s.cfg.BackupPath()); err != nil {
				s.logger.Warn("backup failed", "error", err)
			} else if copied {
				s.stats.backups.Add(1)
			}
			s.owner.Post(func() {
				if s.closed {
					return
				}
				s.backup = BackupAttempted
				if s.writePending {
					s.restartTimer()
				}
			})
		})
		if err != nil {
			s.logger.Warn("backup not scheduled", "error", err)
			s.backup = BackupAttempted
			s.restartTimer()
		}
	case BackupDispatched:
		// The backup completion starts the timer.
	case BackupAttempted:
		s.restartTimer()
	}
}

func (s *Storage) restartTimer() {
	s.timerGen++
	gen := s.timerGen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.SaveDelay, func() {
		s.owner.Post(func() {
			if s.closed || gen != s.timerGen {
				return
			}
			s.commit()
		})
	})
}

// commit serializes on the owner and hands the bytes to the lane.
func (s *Storage) commit() {
	s.timer = nil
	if !s.writePending {
		return
	}
	s.writePending = false

	data, err := s.serialize()
	if err != nil {
		s.logger.Warn("save skipped", "error", err)
		return
	}
	if err := s.lane.Submit(func() { s.write(data) }); err != nil {
		s.logger.Warn("save not scheduled", "error", err)
	}
}

func (s *Storage) serialize() ([]byte, error) {
	if s.serializer == nil {
		return nil, ErrNoSerializer
	}
	data, err := s.serializer()
	if err != nil {
		return nil, fmt.Errorf("serialize menus: %w", err)
	}
	return data, nil
}

// write runs on the lane.
func (s *Storage) write(data []byte) {
	if err := atomicWrite(s.cfg.ProfilePath, data); err != nil {
		s.stats.failures.Add(1)
		s.logger.Error("write menus failed", "error", err)
		return
	}
	s.stats.writes.Add(1)
	s.logger.Debug("menus written", "bytes", len(data))
}

// Close tears the storage down. A pending write is flushed synchronously;
// queued lane jobs finish before Close returns. Completions posted after
// Close are discarded.
func (s *Storage) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if s.writePending {
		s.writePending = false
		if data, err := s.serialize(); err != nil {
			s.logger.Warn("final save skipped", "error", err)
		} else if err := s.lane.SubmitAndWait(context.Background(), func() { s.write(data) }); err != nil {
			s.logger.Warn("final save failed", "error", err)
		}
	}
	s.lane.Shutdown()
}
