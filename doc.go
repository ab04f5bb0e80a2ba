// Package promise is a single-threaded, cooperative event loop for
// composing asynchronous computations out of a tree of promises.
//
// A [Loop] drives a queue of pending [Event] values to completion. There is
// no thread pool and no implicit parallelism: everything a Loop runs, it
// runs on the goroutine that created it, one Event at a time, in either
// depth-first or breadth-first order depending on how the Event was armed.
// One can create as many Loops as one likes, each bound to its own
// goroutine.
//
// # Composing Promises
//
// A [Promise] is a handle to a value of type T that becomes available at
// some point in the future. [Resolved] and [Rejected] build a Promise that
// is already settled; [Then] attaches a synchronous transform; [ThenChain]
// attaches a transform that itself returns a Promise, flattening the
// result instead of nesting it; [Attach] pins values to a Promise's
// lifetime; [Fork] lets several independent Promises observe one shared
// result without recomputing it; [Race] settles with whichever of two
// Promises is ready first.
//
// # Waiting and Daemon Tasks
//
// [Wait] pumps a Loop's queue until a given Promise is ready, then returns
// its value or error. This is the only way a Loop's queue actually
// advances; nothing runs in the background on its own. For work that
// should run without a corresponding Wait call, [Daemonize] hands a
// Promise to the Loop's own [TaskSet], which runs it to completion and
// routes any resulting error to an [ErrorHandler] instead of discarding
// it.
//
// # Producing Promises From Outside the Loop
//
// [Adapter] is the bridge between the Loop's world and code that cannot
// itself register callbacks in terms of Events, most commonly another
// goroutine that has computed a result and needs to hand it back. Only the
// Loop's own goroutine may fulfill or reject an Adapter's promise, per the
// package's single-goroutine-ownership rule, which the goroutine-affinity
// check performed when an Event is armed enforces.
//
// # Watchable State
//
// [Signal], [State], [WaitGroup] and [Semaphore] are small building blocks
// on top of Promise for the recurring case of "notify whoever is watching
// when something changes": a State carries a value and resolves watchers
// on every Set; a WaitGroup resolves watchers when its counter reaches
// zero; a Semaphore resolves a waiter once enough weight has been
// released for it to fit.
//
// # Diagnostics
//
// [TraceNode] walks a promise graph from a Promise down through its
// dependencies, describing each node by its Go type; useful when a Loop
// appears to be stuck and one wants to see what it is actually waiting on.
// [Trace] starts from an Event instead; Events created by this package
// expose no node to it, so it reports only the Event's own type.
package promise
