package promise

// transformNode wraps a dependency and a user-supplied transform function,
// the Go analogue of KJ's TransformPromiseNodeBase.
//
// get releases the dependency inside itself (not in a separate step),
// exactly as the source does, so that the dependency is dropped whether the
// transform panics, returns an error, or succeeds.
type transformNode struct {
	dependency promiseNode
	transform  func(any) (any, error)
}

func (n *transformNode) onReady(event *Event) bool {
	return n.dependency.onReady(event)
}

func (n *transformNode) get(out *ExceptionOrValue) {
	if err := tryCatch(func() {
		n.getImpl(out)
		n.dropDependency()
	}); err != nil {
		out.AddException(err)
	}
}

func (n *transformNode) getImpl(out *ExceptionOrValue) {
	var depResult ExceptionOrValue
	n.getDepResult(&depResult)

	if depResult.Err() != nil {
		out.Errs = append(out.Errs, depResult.Errs...)
		return
	}

	value, err := n.transform(depResult.Value)
	if err != nil {
		out.AddException(err)
		return
	}
	out.Value = value
}

func (n *transformNode) getDepResult(out *ExceptionOrValue) {
	n.dependency.get(out)
	out.AddException(tryCatch(n.dropDependency))
}

func (n *transformNode) dropDependency() {
	n.dependency = nil
}

func (n *transformNode) innerForTrace() promiseNode { return n.dependency }
