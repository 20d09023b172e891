// Package watch reports changes to the project records of a workspace.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers per key into one callback per key.
type Debouncer struct {
	window time.Duration
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(key string)
}

// NewDebouncer creates a debouncer that calls fire once a key has been
// quiet for window.
func NewDebouncer(window time.Duration, fire func(key string)) *Debouncer {
	return &Debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Trigger restarts the window for key.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.fire(key)
	})
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
