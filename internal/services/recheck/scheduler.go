// Package recheck schedules the delayed dashboard refreshes that follow an import submission.
package recheck

import (
	"log"
	"sync"
	"time"
)

// DefaultDelays are the offsets after a submission at which the backend is checked again
var DefaultDelays = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

type task struct {
	timers    []*time.Timer
	remaining int
}

// Scheduler runs a callback once per configured delay, grouped under a key.
// Scheduling a key again cancels the checks still pending for it.
type Scheduler struct {
	delays []time.Duration
	mu     sync.Mutex
	tasks  map[string]*task
}

// New creates a scheduler firing at each of delays
func New(delays ...time.Duration) *Scheduler {
	return &Scheduler{
		delays: append([]time.Duration(nil), delays...),
		tasks:  make(map[string]*task),
	}
}

// Schedule arms one timer per delay for key
func (s *Scheduler) Schedule(key string, fn func()) {
	if len(s.delays) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[key]; ok {
		stopAll(existing)
		log.Printf("Replaced pending re-checks for %s", key)
	}

	t := &task{remaining: len(s.delays)}
	for i, delay := range s.delays {
		n := i + 1
		t.timers = append(t.timers, time.AfterFunc(delay, func() {
			s.fire(key, t, n, fn)
		}))
	}
	s.tasks[key] = t
}

func (s *Scheduler) fire(key string, t *task, n int, fn func()) {
	s.mu.Lock()
	if s.tasks[key] != t {
		// cancelled or replaced after the timer already fired
		s.mu.Unlock()
		return
	}
	t.remaining--
	if t.remaining == 0 {
		delete(s.tasks, key)
	}
	s.mu.Unlock()

	log.Printf("Checking for backend updates (%d/%d) for %s", n, len(s.delays), key)
	fn()
}

// Cancel stops the pending checks for key. It reports whether any were pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	stopAll(t)
	delete(s.tasks, key)
	return true
}

// CancelAll stops every pending check and returns how many keys were cancelled
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tasks)
	for key, t := range s.tasks {
		stopAll(t)
		delete(s.tasks, key)
	}
	return n
}

// Pending returns how many checks are still due for key
func (s *Scheduler) Pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[key]; ok {
		return t.remaining
	}
	return 0
}

func stopAll(t *task) {
	for _, timer := range t.timers {
		timer.Stop()
	}
}
