// Package owner provides the task queue of the goroutine that owns a menu
// model. Background work hands results back by posting closures here; only
// the owning goroutine runs them.
package owner

import (
	"context"
	"sync"
	"time"
)

// Poster accepts tasks to run on the owning goroutine. Post never blocks
// and may be called from any goroutine.
type Poster interface {
	Post(task func())
}

// Loop is an unbounded FIFO of tasks drained by the owning goroutine.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	wakeup chan struct{}
}

// Compile-time interface compliance check.
var _ Poster = (*Loop)(nil)

// NewLoop creates an empty Loop.
func NewLoop() *Loop {
	return &Loop{wakeup: make(chan struct{}, 1)}
}

// Post queues task. It is safe for concurrent use.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()

	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// RunPending runs every task queued so far, including tasks those tasks
// post, and returns how many ran. It must be called by the owner.
func (l *Loop) RunPending() int {
	ran := 0
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return ran
		}
		task := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		task()
		ran++
	}
}

// Run drains tasks as they arrive until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wakeup:
		}
	}
}

// RunUntil drains tasks until cond reports true or ctx is done. cond is
// evaluated on the owner between tasks.
func (l *Loop) RunUntil(ctx context.Context, cond func() bool) error {
	for {
		l.RunPending()
		if cond() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wakeup:
		}
	}
}

// RunFor drains tasks for duration d.
func (l *Loop) RunFor(d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	_ = l.Run(ctx)
}
