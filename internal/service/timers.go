package service

import (
	"sync"
	"time"
)

// timerRegistry tracks outstanding timers so a single teardown cancels
// everything. Callbacks must re-check state; a timer can fire concurrently
// with Teardown.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{timers: make(map[string]*time.Timer)}
}

// Schedule arms a named timer, replacing any previous timer under the same
// name.
func (r *timerRegistry) Schedule(name string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.timers[name]; ok {
		prev.Stop()
	}
	r.timers[name] = time.AfterFunc(d, func() {
		r.forget(name)
		fn()
	})
}

// Cancel stops one named timer.
func (r *timerRegistry) Cancel(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[name]; ok {
		t.Stop()
		delete(r.timers, name)
	}
}

// Teardown stops every outstanding timer.
func (r *timerRegistry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, t := range r.timers {
		t.Stop()
		delete(r.timers, name)
	}
}

func (r *timerRegistry) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.timers, name)
}
