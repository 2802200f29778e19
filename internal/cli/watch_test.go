package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatchReprintsOnChange(t *testing.T) {
	env := newTestEnv(t)
	bundled, err := fsReadBundled("mainmenu.json")
	if err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd(env.deps)
	out := &syncBuffer{}
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", env.configPath, "watch", "--menu", "main_file"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	header := "main menus (version 1.0.0.0)"
	eventually(t, func() bool { return strings.Count(out.String(), header) == 1 })

	edited := strings.Replace(string(bundled), `"action": "cmd.new_tab"`, `"action": "cmd.new_tab", "title": "Open Tab"`, 1)
	writeFile(t, filepath.Join(env.dir, "mainmenu.json"), edited)
	eventually(t, func() bool { return strings.Count(out.String(), header) == 2 })
	if !strings.Contains(out.String(), `"Open Tab"`) {
		t.Errorf("reprint lacks the edited title:\n%s", out.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
