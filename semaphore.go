package promise

import "slices"

// Semaphore bounds asynchronous access to a resource: callers request
// access with a given weight, queueing when the weight would exceed the
// configured size, and are granted access in the order they asked.
//
// This Semaphore does not provide backpressure for spawning a lot of
// tasks; it only orders access to whatever the weight represents.
//
// A Semaphore must not be shared by more than one [Loop].
type Semaphore struct {
	size, cur int64
	waiters   []*semaphoreWaiter
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire returns a Promise that becomes ready once a weight of n has been
// acquired from s. It panics if n is negative.
func (s *Semaphore) Acquire(n int64) Promise[struct{}] {
	if n < 0 {
		panic("promise: Semaphore: negative weight")
	}

	if s.size-s.cur >= n && len(s.waiters) == 0 {
		s.cur += n
		return Resolved(struct{}{})
	}

	w := &semaphoreWaiter{n: n}
	s.waiters = append(s.waiters, w)
	return Promise[struct{}]{node: w}
}

// Release releases s with a weight of n, resolving as many outstanding
// waiters as now fit. It panics if n is negative or exceeds what is held.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("promise: Semaphore: negative weight")
	}
	if s.cur >= 0 {
		s.cur -= n
	}
	if s.cur < 0 {
		panic("promise: Semaphore: released more than held")
	}
	s.notifyWaiters()
}

func (s *Semaphore) notifyWaiters() {
	satisfied := 0
	for _, w := range s.waiters {
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		w.n = 0
		w.ready.arm()
		satisfied++
	}
	s.waiters = slices.Delete(s.waiters, 0, satisfied)
}

type semaphoreWaiter struct {
	n     int64
	ready onReadyEvent
}

func (w *semaphoreWaiter) onReady(event *Event) bool {
	return w.ready.init(event)
}

func (w *semaphoreWaiter) get(out *ExceptionOrValue) {
	out.Value = struct{}{}
}

func (w *semaphoreWaiter) innerForTrace() promiseNode { return nil }
