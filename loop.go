package promise

import (
	"sync"

	"github.com/google/uuid"
)

// A Loop drives a queue of [Event] values to completion on the goroutine
// that created it. One Loop is bound to that goroutine for its entire
// lifetime; see [Current].
//
// The queue is a doubly-linked FIFO with two insertion points: depth-first
// arms run immediately after the event currently firing, breadth-first arms
// run after everything already queued. See armDepthFirst/armBreadthFirst on
// [Event].
type Loop struct {
	id             uuid.UUID
	ownerGoroutine int64

	head                   *Event
	tail                   **Event
	depthFirstInsertPoint  **Event

	running bool

	sleeper sleeper

	daemons *TaskSet

	metrics     Metrics
	panicPolicy PanicPolicy
}

// NewLoop creates a Loop bound to the calling goroutine.
//
// Unlike the source this is ported from, this package does not enforce "at
// most one Loop per thread"; there is no restriction on how many Loops a
// process may have, since a goroutine has no way to be haunted by a
// previous Loop the way an OS thread's thread-local storage can be. Each
// Loop is independent; only its own goroutine may drive or arm it.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		id:             uuid.New(),
		ownerGoroutine: goroutineID(),
		metrics:        NoopMetrics{},
	}
	l.tail = &l.head
	l.depthFirstInsertPoint = &l.head
	l.sleeper.init()

	cfg := defaultLoopConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.metrics != nil {
		l.metrics = cfg.metrics
	}
	l.panicPolicy = cfg.PanicPolicy

	l.daemons = NewTaskSet(l, cfg.errorHandler)
	return l
}

// ID returns the UUID this Loop was tagged with at construction, used to
// distinguish loops from each other in metrics and traces.
func (l *Loop) ID() uuid.UUID { return l.id }

// current is a registry of goroutine id -> owning Loop, standing in for the
// source's single __thread EventLoop pointer (a goroutine may still only
// meaningfully "be inside" one Loop's Wait at a time, but nothing here
// prevents holding references to several Loops from one goroutine; only
// Wait/arms police ownership).
var current sync.Map // int64 -> *Loop

// SetCurrent registers l as the current Loop for the calling goroutine, so
// that [Current] can find it. Loop construction does not do this
// automatically; callers that want the ambient-lookup behavior opt in
// explicitly, mirroring how the source's EventLoop constructor always
// installs the thread-local. It panics if a Loop is already registered for
// this goroutine, the same "fails if one already exists" rule the source
// applies at construction; call [ClearCurrent] first to replace one.
func SetCurrent(l *Loop) {
	if goroutineID() != l.ownerGoroutine {
		panic("promise: SetCurrent called from a different goroutine than the Loop was created on")
	}
	if _, exists := current.LoadOrStore(l.ownerGoroutine, l); exists {
		panic("promise: a Loop is already registered for this goroutine")
	}
}

// ClearCurrent removes whatever Loop was registered for the calling
// goroutine with [SetCurrent].
func ClearCurrent() {
	current.Delete(goroutineID())
}

// Current returns the Loop registered for the calling goroutine with
// [SetCurrent]. It panics if none exists.
func Current() *Loop {
	v, ok := current.Load(goroutineID())
	if !ok {
		panic("promise: no Loop is registered for this goroutine")
	}
	return v.(*Loop)
}

// boolEvent is the sentinel event Wait arms on the promise it is waiting
// for; its only job is to remember that it fired.
type boolEvent struct {
	Event
	fired bool
}

func newBoolEvent(loop *Loop) *boolEvent {
	be := &boolEvent{}
	be.Event = Event{loop: loop}
	be.Event.fire = func() any {
		be.fired = true
		return nil
	}
	return be
}

// waitNode drives loop until node reports ready, then extracts its result.
//
// It panics (a programmer error, per the spec's taxonomy) if called from a
// goroutine other than loop's owner, or if called re-entrantly from within
// a firing event.
func waitNode(loop *Loop, node promiseNode) ExceptionOrValue {
	assertOwnedByCurrentGoroutine(loop, "Wait called from a different goroutine than the Loop was created on")
	if loop.running {
		panic("promise: Wait is not allowed from within an event callback")
	}

	stop := loop.metrics.StartWait(loop.id)

	done := newBoolEvent(loop)
	if node.onReady(&done.Event) {
		done.fired = true
	}

	loop.running = true
	func() {
		defer func() { loop.running = false }()

		for !done.fired {
			if loop.head == nil {
				loop.sleeper.prepareToSleep()
				if loop.head != nil {
					loop.sleeper.wake()
				}
				loop.sleeper.sleep()
				continue
			}

			event := loop.head
			loop.head = event.next
			if loop.head != nil {
				loop.head.prev = &loop.head
			}
			loop.depthFirstInsertPoint = &loop.head
			if loop.tail == &event.next {
				loop.tail = &loop.head
			}
			event.next = nil
			event.prev = nil

			event.firing = true
			keepAlive := event.fire()
			event.firing = false
			_ = keepAlive

			loop.depthFirstInsertPoint = &loop.head

			loop.metrics.RecordTurn(loop.id)
		}
	}()

	var result ExceptionOrValue
	node.get(&result)
	err := result.Err()
	stop(err)

	if loop.panicPolicy == PanicPolicyRepanic && err != nil {
		var pe *panicError
		for _, e := range result.Errs {
			if p, ok := e.(*panicError); ok {
				pe = p
				break
			}
		}
		if pe != nil {
			panic(pe.value)
		}
	}

	return result
}

// Wait drives loop until p signals ready, then returns its value or error.
func Wait[T any](loop *Loop, p Promise[T]) (T, error) {
	result := waitNode(loop, p.node)
	value, _ := result.Value.(T)
	return value, result.Err()
}

// Yield returns a promise that becomes ready only after every event
// already queued on the loop that eventually waits on it has run (a
// breadth-first arm, in the vocabulary of §4.3).
func Yield() Promise[struct{}] {
	return Promise[struct{}]{node: yieldNode{}}
}

// Daemonize hands ownership of p to loop's internal [TaskSet]: p runs to
// completion (or failure, routed to the default error handler) without
// anyone needing to Wait on it. It is a silent no-op if loop is shutting
// down.
func Daemonize(loop *Loop, p Promise[struct{}]) {
	loop.daemons.Add(p)
}

// Close tears down loop: its daemon TaskSet is destroyed first (daemon
// tasks may still touch the loop while unwinding), then any events still
// queued are force-unlinked and reported, since a Loop destroyed with
// events still queued indicates a leaked promise graph.
func (l *Loop) Close() {
	assertOwnedByCurrentGoroutine(l, "Loop closed from a different goroutine than it was created on")

	l.daemons.Close()

	if l.head != nil {
		leaked := l.head
		event := leaked
		for event != nil {
			next := event.next
			event.next = nil
			event.prev = nil
			event = next
		}
		panic("promise: Loop closed with events still in the queue (memory leak?)")
	}
}
