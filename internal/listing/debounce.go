package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is the recommended inactivity window for collapsing rapid
// query changes into one pipeline run.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses bursts of calls into a single trailing-edge
// invocation: every Call cancels the pending timer and starts a new one, so
// only the last function runs, after the configured inactivity window.
type Debouncer struct {
	d time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given window; non-positive
// values fall back to DefaultDebounce.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &Debouncer{d: d}
}

// Call schedules fn to run after the inactivity window, cancelling any
// previously scheduled function.
func (b *Debouncer) Call(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.d, fn)
}

// Stop cancels the pending invocation, if any.
func (b *Debouncer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
