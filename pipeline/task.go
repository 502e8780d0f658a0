package pipeline

import (
	"context"
	"sync"
	"time"
)

// Task is a single slot of deferred work. Scheduling replaces whatever the
// slot held: a replaced run that has not started never starts, and one
// that is running sees its context cancelled.
type Task struct {
	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	pending bool
}

// Schedule runs fn after delay unless the task is rescheduled or
// cancelled first.
func (t *Task) Schedule(delay time.Duration, fn func(ctx context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.pending = true

	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		if t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.pending = false
		t.timer = nil
		t.mu.Unlock()

		defer cancel()
		fn(ctx)
	})
}

// Pending reports whether a scheduled run has not started yet.
func (t *Task) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Cancel drops the scheduled run, if any, and cancels a running one.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

func (t *Task) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.pending = false
}
