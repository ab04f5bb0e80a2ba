package promise

// eagerNode wraps a dependency and registers its own internal listener at
// construction time, so the dependency starts making progress immediately
// rather than waiting for some downstream consumer to call onReady; the Go
// analogue of KJ's EagerPromiseNodeBase, used to implement [Eager].
type eagerNode struct {
	dependency promiseNode
	event      Event

	done   bool
	result ExceptionOrValue

	onReadyEvent onReadyEvent
}

func newEagerNode(loop *Loop, dependency promiseNode) *eagerNode {
	n := &eagerNode{dependency: dependency}
	n.event = *newEvent(loop, n.fire)
	if dependency.onReady(&n.event) {
		n.fire()
	}
	return n
}

func (n *eagerNode) fire() any {
	n.dependency.get(&n.result)
	n.dependency = nil
	n.done = true
	n.onReadyEvent.arm()
	return nil
}

func (n *eagerNode) onReady(event *Event) bool {
	if n.done {
		return true
	}
	return n.onReadyEvent.init(event)
}

func (n *eagerNode) get(out *ExceptionOrValue) {
	out.Value = n.result.Value
	out.Errs = append(out.Errs, n.result.Errs...)
}

func (n *eagerNode) innerForTrace() promiseNode { return n.dependency }
