package promise

// An Event is an intrusive queue element bound to a [Loop]: an armable,
// fireable unit of scheduling.
//
// Event is held by every concrete scheduling primitive in this package
// (the two branches of an exclusive join, a fork hub, a chain node, an
// eager node, a TaskSet's entries, and Wait's sentinel). Go has no abstract
// base class with virtual dispatch, so polymorphic firing is expressed with
// a function field instead.
type Event struct {
	loop *Loop

	// prev points to the slot that references this Event (the address of
	// some other Event's next field, or the Loop's head/tail/depth-first
	// insertion-point field; not to the predecessor Event). This makes
	// unlinking an O(1) single write with no head sentinel required.
	prev **Event
	next *Event

	firing bool

	// fire is called by the Loop when this Event reaches the front of the
	// queue. It may return a value the Loop should keep a reference to
	// until after fire has returned and firing has been cleared, mirroring
	// the source's "transfer ownership out, then drop" dance for an Event
	// that removes itself from its owning collection while it fires.
	fire func() any

	// traceInner optionally exposes the promiseNode this Event is driving,
	// for Trace. No Event constructed in this package sets it, so it is
	// always nil here and Trace reveals no node below an Event.
	traceInner func() promiseNode
}

// newEvent creates an Event bound to loop, ready to be armed.
func newEvent(loop *Loop, fire func() any) *Event {
	return &Event{loop: loop, fire: fire}
}

// armDepthFirst inserts e at the Loop's depth-first insertion point, so
// that it runs immediately after the event currently firing (if any)
// rather than at the tail of the queue. A no-op if e is already enqueued.
func (e *Event) armDepthFirst() {
	assertOwnedByCurrentGoroutine(e.loop, "Event armed from a different goroutine than it was created in; use a thread-safe work queue to post cross-goroutine")

	if e.prev != nil {
		return
	}

	slot := e.loop.depthFirstInsertPoint
	e.next = *slot
	e.prev = slot
	*slot = e
	if e.next != nil {
		e.next.prev = &e.next
	}

	e.loop.depthFirstInsertPoint = &e.next

	if e.loop.tail == slot {
		e.loop.tail = &e.next
	}
}

// armBreadthFirst inserts e at the Loop's tail, so that it runs after every
// event already queued. A no-op if e is already enqueued.
func (e *Event) armBreadthFirst() {
	assertOwnedByCurrentGoroutine(e.loop, "Event armed from a different goroutine than it was created in; use a thread-safe work queue to post cross-goroutine")

	if e.prev != nil {
		return
	}

	slot := e.loop.tail
	e.next = *slot
	e.prev = slot
	*slot = e
	if e.next != nil {
		e.next.prev = &e.next
	}

	e.loop.tail = &e.next
}

// unlink removes e from whatever queue it currently occupies. It is a bug
// to unlink an Event while it is firing (self-destruction during its own
// fire).
func (e *Event) unlink() {
	if e.prev != nil {
		loop := e.loop
		if loop.head == e {
			loop.head = e.next
		}
		if loop.tail == &e.next {
			loop.tail = e.prev
		}
		if loop.depthFirstInsertPoint == &e.next {
			loop.depthFirstInsertPoint = e.prev
		}

		*e.prev = e.next
		if e.next != nil {
			e.next.prev = e.prev
		}

		e.prev = nil
		e.next = nil
	}

	if e.firing {
		panic("promise: event destroyed itself while firing")
	}
}

// innerForTrace exposes the promiseNode this Event is driving, for [Trace].
func (e *Event) innerForTrace() promiseNode {
	if e.traceInner != nil {
		return e.traceInner()
	}
	return nil
}
