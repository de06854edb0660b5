package realtime

import (
	"sync"
	"time"
)

// DelayedTask runs at most one callback after a delay. Every
// Schedule or Cancel invalidates the callbacks issued before,
// so a callback that already fired but has not taken its
// owner's lock yet can find out it is stale through Valid.
type DelayedTask struct {
	mu    sync.Mutex
	timer *time.Timer
	token uint64
}

// Schedule replaces any pending callback with fn, called
// with its token after d.
func (t *DelayedTask) Schedule(d time.Duration, fn func(token uint64)) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.token++
	token := t.token
	t.timer = time.AfterFunc(d, func() { fn(token) })
	return token
}

// Cancel stops the pending callback, if any, and invalidates
// callbacks already running.
func (t *DelayedTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.token++
}

// Valid reports whether token belongs to the latest scheduled
// callback and nothing cancelled it since.
func (t *DelayedTask) Valid(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil && token == t.token
}

// Done marks the callback owning token as finished.
func (t *DelayedTask) Done(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token == t.token {
		t.timer = nil
	}
}

// Pending reports whether a callback is scheduled and has not
// completed.
func (t *DelayedTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *DelayedTask) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
