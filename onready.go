package promise

// onReadyEvent is a small state machine, carried by most node and combinator
// types, that holds one of: unset, "already ready", or a registered event.
//
// It exists so a node can be told to arm an as-yet-unknown downstream event
// once, and later be told it is ready, possibly before that event was ever
// registered.
type onReadyEvent struct {
	event *Event
	ready bool
}

// init registers event to be armed when the owner becomes ready. It returns
// true if the owner is already ready, in which case the caller should arm
// event depth-first itself.
//
// It is a programmer error to call init more than once.
func (r *onReadyEvent) init(event *Event) bool {
	if r.ready {
		return true
	}
	if r.event != nil {
		panic("promise: onReady() called more than once on the same node")
	}
	r.event = event
	return false
}

// arm marks the owner ready, arming the registered event (depth-first) if
// there is one, or remembering readiness for a not-yet-registered event.
func (r *onReadyEvent) arm() {
	if r.event == nil {
		r.ready = true
		return
	}
	r.event.armDepthFirst()
}
