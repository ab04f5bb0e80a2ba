package promise

// Promise is a handle to a value of type T that becomes available at some
// point in the future, driven by a [Loop]. It is the only place this
// package surfaces Go generics: internally every combinator operates on
// the untyped promiseNode interface, the same way the source's
// PromiseNode is untyped and Promise<T> is a thin typed wrapper over it.
type Promise[T any] struct {
	node promiseNode
}

// Resolved returns a Promise already holding v.
func Resolved[T any](v T) Promise[T] {
	return Promise[T]{node: immediateValueNode{value: v}}
}

// Rejected returns a Promise already broken with err. It panics if err is
// nil; a broken promise needs a reason.
func Rejected[T any](err error) Promise[T] {
	if err == nil {
		panic("promise: Rejected called with a nil error")
	}
	return Promise[T]{node: immediateBrokenNode{err: err}}
}

// Then attaches a synchronous transform to p: once p is ready, f runs on
// its value, and the returned Promise carries whatever f returns. If p
// completes with an error, f never runs and the error propagates
// unchanged.
func Then[T, U any](p Promise[T], f func(T) (U, error)) Promise[U] {
	return Promise[U]{node: &transformNode{
		dependency: p.node,
		transform: func(v any) (any, error) {
			return f(v.(T))
		},
	}}
}

// ThenChain attaches f to p, where f itself returns a Promise: the result
// settles with whatever f's promise eventually settles with, rather than
// nesting one promise inside another. loop is needed to drive the
// intermediate step-1/step-2 transition.
func ThenChain[T, U any](loop *Loop, p Promise[T], f func(T) (Promise[U], error)) Promise[U] {
	intermediate := &transformNode{
		dependency: p.node,
		transform: func(v any) (any, error) {
			next, err := f(v.(T))
			if err != nil {
				return nil, err
			}
			return next.node, nil
		},
	}
	return Promise[U]{node: newChainNode(loop, intermediate)}
}

// Attach pins the given attachments to p: they are kept alive until p's
// result has been extracted, and any of them implementing
// Close() error is closed afterward.
func Attach[T any](p Promise[T], attachments ...any) Promise[T] {
	return Promise[T]{node: &attachNode{dependency: p.node, attachments: attachments}}
}

// Eager forces p to start making progress immediately, without waiting for
// a consumer to call onReady on it. Daemonize does this implicitly;
// Eager is for callers who want the same effect while still holding onto
// the resulting Promise.
func Eager[T any](loop *Loop, p Promise[T]) Promise[T] {
	return Promise[T]{node: newEagerNode(loop, p.node)}
}

// Race returns a Promise that settles with whichever of a or b becomes
// ready first. The loser is simply dropped; this package has no
// cancellation signal to propagate into it.
func Race[T any](loop *Loop, a, b Promise[T]) Promise[T] {
	return Promise[T]{node: newExclusiveJoinNode(loop, a.node, b.node)}
}

// Forked is a shared, replayable view of a single Promise's eventual
// result, created by [Fork]: any number of independent Promises can be
// read off it without re-running whatever produced the shared value.
type Forked[T any] struct {
	hub *forkHub
}

// Fork wraps p so that multiple independent branches can each observe its
// eventual result.
func Fork[T any](loop *Loop, p Promise[T]) Forked[T] {
	return Forked[T]{hub: newForkHub(loop, p.node)}
}

// Branch returns a new Promise observing f's shared result unmodified.
func (f Forked[T]) Branch() Promise[T] {
	return Promise[T]{node: f.hub.branch()}
}

// BranchWith returns a new Promise observing a projection of f's shared
// result, computed by selector once the shared result is available. Use
// this to hand each branch a different field of a struct result without
// copying the whole thing through every branch.
func BranchWith[T, U any](f Forked[T], selector func(T) (U, error)) Promise[U] {
	b := f.hub.branch()
	b.selector = func(v any) (any, error) {
		return selector(v.(T))
	}
	return Promise[U]{node: b}
}
