package promise

import (
	"bytes"
	"runtime"
	"strconv"
)

// Go has no compiler-supported thread-local storage, and goroutines are not
// pinned to OS threads, so this port maps the spec's "thread" onto
// "goroutine": a Loop remembers which goroutine created it and asserts that
// waits and arms happen on that same goroutine, the same way the source
// asserts against its __thread EventLoop pointer.
//
// goroutineID parses the header line runtime.Stack always emits for the
// calling goroutine ("goroutine 123 [running]:...") to obtain a stable,
// comparable identity for it. This is the standard fallback Go code reaches
// for when it needs goroutine identity without cgo.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))
	if end := bytes.IndexByte(b, ' '); end >= 0 {
		b = b[:end]
	}

	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		panic("promise: could not parse goroutine id: " + err.Error())
	}
	return id
}

// assertOwnedByCurrentGoroutine panics with msg if loop is non-nil and the
// calling goroutine is not the one that created loop.
func assertOwnedByCurrentGoroutine(loop *Loop, msg string) {
	if loop == nil {
		return
	}
	if goroutineID() != loop.ownerGoroutine {
		panic("promise: " + msg)
	}
}
