package inventory

import (
	"sync"
	"time"
)

// debouncer runs fn once delay has passed without another trigger.
type debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

// trigger cancels any pending run and schedules a new one.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// cancel drops the pending run, if any. A run already in progress is not interrupted.
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// stop cancels and refuses later triggers.
func (d *debouncer) stop() {
	d.cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
