package promise

// forkHub drives a single dependency exactly once and replays its result to
// any number of forkBranch listeners, the Go analogue of KJ's ForkHub /
// ForkBranchBase pair. The hub owns the dependency; branches own nothing but
// a pointer back to the hub and an onReadyEvent of their own.
type forkHub struct {
	dependency promiseNode
	event      Event

	done   bool
	result ExceptionOrValue

	branches []*forkBranch
}

func newForkHub(loop *Loop, dependency promiseNode) *forkHub {
	h := &forkHub{dependency: dependency}
	h.event = *newEvent(loop, h.fire)
	if dependency.onReady(&h.event) {
		h.fire()
	}
	return h
}

func (h *forkHub) fire() any {
	h.dependency.get(&h.result)
	h.dependency = nil
	h.done = true

	branches := h.branches
	h.branches = nil
	for _, b := range branches {
		b.ready.arm()
	}
	return nil
}

// branch registers a new forkBranch observing h's eventual result.
func (h *forkHub) branch() *forkBranch {
	b := &forkBranch{hub: h}
	if !h.done {
		h.branches = append(h.branches, b)
	}
	return b
}

// forkBranch is a promiseNode projecting a piece of the hub's shared result
// through an optional selector, mirroring how KJ's fork branches each read a
// different field of a shared struct result.
type forkBranch struct {
	hub      *forkHub
	ready    onReadyEvent
	selector func(any) (any, error)
}

func (b *forkBranch) onReady(event *Event) bool {
	if b.hub.done {
		return true
	}
	return b.ready.init(event)
}

func (b *forkBranch) get(out *ExceptionOrValue) {
	if err := b.hub.result.Err(); err != nil {
		out.AddException(err)
		return
	}

	value := b.hub.result.Value
	if b.selector != nil {
		v, err := b.selector(value)
		if err != nil {
			out.AddException(err)
			return
		}
		value = v
	}
	out.Value = value
}

func (b *forkBranch) innerForTrace() promiseNode {
	if b.hub.dependency != nil {
		return b.hub.dependency
	}
	return nil
}
