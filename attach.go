package promise

// attachNode wraps a dependency plus a set of arbitrary owned values kept
// alive until the node completes: the Go analogue of KJ's
// AttachmentPromiseNodeBase, which pins move-only C++ objects for the
// lifetime of a promise. In Go, "kept alive" just means "referenced", so
// this mostly matters for values with an explicit Close/release step.
type attachNode struct {
	dependency  promiseNode
	attachments []any
}

func (n *attachNode) onReady(event *Event) bool {
	return n.dependency.onReady(event)
}

func (n *attachNode) get(out *ExceptionOrValue) {
	n.dependency.get(out)
	n.releaseAttachments(out)
}

func (n *attachNode) releaseAttachments(out *ExceptionOrValue) {
	attachments := n.attachments
	n.attachments = nil
	out.AddException(tryCatch(func() {
		for _, a := range attachments {
			if c, ok := a.(interface{ Close() error }); ok {
				if err := c.Close(); err != nil {
					panic(err)
				}
			}
		}
	}))
}

func (n *attachNode) innerForTrace() promiseNode { return n.dependency }
