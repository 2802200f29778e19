package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, path string) *atomic.Int32 {
	t.Helper()
	w, err := New(path, WithDelay(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func() { calls.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return &calls
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunReportsBurstOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mainmenu.json")
	calls := startWatcher(t, path)

	for i := range 5 {
		if err := os.WriteFile(path, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	eventually(t, func() bool { return calls.Load() >= 1 })

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("changed called %d times, want 1", got)
	}
}

func TestRunSeesAtomicReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mainmenu.json")
	calls := startWatcher(t, path)

	tmp := filepath.Join(dir, ".tmp-menus")
	if err := os.WriteFile(tmp, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	eventually(t, func() bool { return calls.Load() == 1 })
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	calls := startWatcher(t, filepath.Join(dir, "mainmenu.json"))

	if err := os.WriteFile(filepath.Join(dir, "contextmenu.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("changed called %d times for an unrelated file", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	w, err := New(filepath.Join(t.TempDir(), "menus.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx, func() {}); err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	t.Parallel()

	if _, err := New(filepath.Join(t.TempDir(), "missing", "menus.json")); err == nil {
		t.Error("New() succeeded for a missing directory")
	}
}
