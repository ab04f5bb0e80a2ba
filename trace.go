package promise

import (
	"reflect"
	"strings"
)

// Trace returns a human-readable description of the promise graph reachable
// from e, for diagnosing a stuck or leaked Loop. It follows e's traceInner
// hook, which no Event in this package sets, so for events created here the
// result is only e's own type name; use [TraceNode] to walk a Promise's
// dependencies. The source needs a
// bespoke trace-string virtual method on every node because C++ type names
// are not reliably available at runtime; Go type names never need
// demangling, so walking reflect.TypeOf over innerForTrace is enough.
func Trace(e *Event) string {
	var b strings.Builder
	b.WriteString(nodeTypeName(e))

	node := e.innerForTrace()
	for node != nil {
		b.WriteString("\n  from ")
		b.WriteString(nodeTypeName(node))
		node = node.innerForTrace()
	}
	return b.String()
}

// TraceNode returns the same kind of description as [Trace], starting from
// a Promise directly rather than the Event watching it.
func TraceNode[T any](p Promise[T]) string {
	var b strings.Builder

	node := p.node
	first := true
	for node != nil {
		if !first {
			b.WriteString("\n  from ")
		}
		first = false
		b.WriteString(nodeTypeName(node))
		node = node.innerForTrace()
	}
	return b.String()
}

func nodeTypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr {
		return "*" + t.Elem().Name()
	}
	return t.Name()
}
