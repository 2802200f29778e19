// Package worker provides the sequential background lane used for file
// I/O. Jobs run one at a time in submission order, so reads and writes
// of the same file never overlap.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrLaneShutdown is returned when submitting to a lane that was shut down.
var ErrLaneShutdown = errors.New("worker: lane has been shut down")

// Lane runs submitted jobs on a single goroutine, strictly FIFO.
type Lane struct {
	name    string
	logger  *slog.Logger
	mu      sync.Mutex
	queue   []func()
	wakeup  chan struct{}
	done    chan struct{}
	closed  bool
	once    sync.Once
	pending atomic.Int32
}

// Option configures a Lane.
type Option func(*Lane)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(ln *Lane) {
		ln.logger = l
	}
}

// NewLane starts a lane. name identifies it in logs.
func NewLane(name string, opts ...Option) *Lane {
	l := &Lane{
		name:   name,
		logger: slog.Default().With("module", "worker"),
		wakeup: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

func (l *Lane) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 {
			if l.closed {
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
			<-l.wakeup
			l.mu.Lock()
		}
		job := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.pending.Add(-1)
		l.do(job)
	}
}

// do runs job, recovering from panics so one bad job cannot kill the lane.
func (l *Lane) do(job func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("job panicked",
				"lane", l.name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	job()
}

func (l *Lane) signal() {
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}

// Submit queues job. It never blocks.
func (l *Lane) Submit(job func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLaneShutdown
	}
	l.queue = append(l.queue, job)
	l.pending.Add(1)
	l.mu.Unlock()
	l.signal()
	return nil
}

// SubmitAndWait queues job behind everything already submitted and waits
// for it to finish or for ctx to be done.
func (l *Lane) SubmitAndWait(ctx context.Context, job func()) error {
	finished := make(chan struct{})
	if err := l.Submit(func() {
		defer close(finished)
		job()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued jobs that have not started.
func (l *Lane) Pending() int {
	return int(l.pending.Load())
}

// Shutdown stops accepting jobs, runs everything already queued and waits
// for the lane goroutine to exit. Multiple calls are safe.
func (l *Lane) Shutdown() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		l.signal()
	})
	<-l.done
}
