package promise

// promiseNode is one node in the promise graph. It is deliberately
// unexported: user code never implements it directly, only composes the
// combinators this package provides, exposed through the generic
// [Promise] handle.
//
// onReady and get may each be called at most once over the node's
// lifetime, in that order; innerForTrace may be called any number of times.
type promiseNode interface {
	// onReady registers event to be armed when the node becomes ready.
	// Returns true if the node is already ready, in which case the caller
	// should arm itself depth-first immediately instead of waiting for a
	// callback.
	onReady(event *Event) bool

	// get extracts the final value-or-exception into out. Destroying the
	// node's own dependency is a required side effect of get, releasing
	// held resources as early as possible; any error from that release is
	// accumulated into out rather than escaping.
	get(out *ExceptionOrValue)

	// innerForTrace reveals the next node down the dependency chain, or
	// nil if there is none, for diagnostic traces.
	innerForTrace() promiseNode
}
