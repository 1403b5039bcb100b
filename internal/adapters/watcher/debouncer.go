// Package watcher reports file changes under a project root.
package watcher

import (
	"slices"
	"sync"
	"time"
)

// DefaultDebounceWindow is the quiet period before a batch of changes is delivered.
const DefaultDebounceWindow = 300 * time.Millisecond

// Debouncer coalesces bursts of changed paths. Every Add restarts the window;
// when it elapses the distinct paths are delivered once, in lexical order.
type Debouncer struct {
	window  time.Duration
	deliver func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// NewDebouncer creates a Debouncer. A non-positive window uses DefaultDebounceWindow.
func NewDebouncer(window time.Duration, deliver func(paths []string)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window:  window,
		deliver: deliver,
		pending: make(map[string]struct{}),
	}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Flush delivers pending paths now and waits for delivery to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil && !d.timer.Stop() {
		// The timer already fired; fire owns this batch.
		d.mu.Unlock()
		return
	}
	paths := d.takeLocked()
	d.mu.Unlock()

	d.send(paths)
}

// Stop drops pending paths and cancels the window.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.takeLocked()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	paths := d.takeLocked()
	d.mu.Unlock()

	d.send(paths)
}

// takeLocked must be called with mu held.
func (d *Debouncer) takeLocked() []string {
	d.timer = nil
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}

func (d *Debouncer) send(paths []string) {
	if len(paths) > 0 && d.deliver != nil {
		d.deliver(paths)
	}
}
