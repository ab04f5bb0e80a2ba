package promise

import "sync"

// sleeper is the Loop's sleep/wake primitive: the classic "check, arm,
// recheck, sleep" pattern that avoids lost wakeups, per §4.2.
//
// The spec allows either a futex-backed integer flag or a mutex+condvar
// pair; Go's ecosystem offers no portable futex wrapper the retrieval pack
// demonstrates, so this port always uses the mutex+condvar strategy (the
// same strategy the source's non-futex SimpleEventLoop branch uses).
type sleeper struct {
	mu      sync.Mutex
	cond    *sync.Cond
	prepped bool
}

func (s *sleeper) init() {
	s.cond = sync.NewCond(&s.mu)
}

// prepareToSleep sets the armed flag. Must be called from the Loop's own
// goroutine, before re-checking the queue.
func (s *sleeper) prepareToSleep() {
	s.mu.Lock()
	s.prepped = true
	s.mu.Unlock()
}

// sleep blocks until wake clears the armed flag. Must be called from the
// Loop's own goroutine, after prepareToSleep.
func (s *sleeper) sleep() {
	s.mu.Lock()
	for s.prepped {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// wake atomically clears the armed flag; if it was set, unblocks the
// sleeper. Safe to call from any goroutine.
func (s *sleeper) wake() {
	s.mu.Lock()
	if s.prepped {
		s.prepped = false
		s.cond.Signal()
	}
	s.mu.Unlock()
}
