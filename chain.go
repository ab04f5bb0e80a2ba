package promise

// chainNode implements the two-step dependency substitution behind
// [Then]-with-a-promise-returning-function (a "flatMap"): the Go analogue of
// KJ's ChainPromiseNode. While in step 1, it waits on the function's
// intermediate promise, itself a Promise[Promise[T]] in spirit. When that
// fires, it unwraps the inner promise and substitutes it as its own
// dependency for step 2, forwarding any onReady registration that arrived
// during step 1.
//
// onReady may only ever be called once across the whole lifetime of a
// PromiseNode, so the STEP1 event (armed by the intermediate becoming ready)
// and the eventual step-2 registration never collide: the former is this
// node's own internal plumbing, the latter is routed through onReadyEvent.
type chainNode struct {
	state chainState
	inner promiseNode

	onReadyEvent onReadyEvent
	event        Event
}

type chainState int

const (
	chainStep1 chainState = iota
	chainStep2
)

// newChainNode starts step 1, waiting for inner (which yields another
// promiseNode when it fires) to become ready.
func newChainNode(loop *Loop, inner promiseNode) *chainNode {
	n := &chainNode{state: chainStep1, inner: inner}
	n.event = *newEvent(loop, n.fire)
	if inner.onReady(&n.event) {
		n.fire()
	}
	return n
}

func (n *chainNode) fire() any {
	n.advanceToStep2()
	return nil
}

// advanceToStep2 reads the step-1 result, releases the step-1 dependency,
// and installs the intermediate's own node (or an immediately-broken node,
// if the intermediate carried an exception) as the new inner.
func (n *chainNode) advanceToStep2() {
	if n.state != chainStep1 {
		return
	}

	var intermediate ExceptionOrValue
	n.inner.get(&intermediate)
	n.inner = nil

	var next promiseNode
	if err := intermediate.Err(); err != nil {
		next = immediateBrokenNode{err: err}
	} else {
		inner, ok := intermediate.Value.(promiseNode)
		if !ok {
			next = immediateBrokenNode{err: errNotAPromiseNode}
		} else {
			next = inner
		}
	}

	n.inner = next
	n.state = chainStep2

	if n.onReadyEvent.event != nil {
		if n.inner.onReady(n.onReadyEvent.event) {
			n.onReadyEvent.event.armDepthFirst()
		}
	}
}

func (n *chainNode) onReady(event *Event) bool {
	switch n.state {
	case chainStep1:
		return n.onReadyEvent.init(event)
	default:
		return n.inner.onReady(event)
	}
}

func (n *chainNode) get(out *ExceptionOrValue) {
	n.advanceToStep2()
	n.inner.get(out)
}

func (n *chainNode) innerForTrace() promiseNode { return n.inner }

type chainNodeError struct{ msg string }

func (e *chainNodeError) Error() string { return e.msg }

var errNotAPromiseNode = &chainNodeError{"promise: chained function's intermediate value was not a promise"}
