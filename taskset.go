package promise

import "log/slog"

// ErrorHandler receives errors surfaced by a [TaskSet]'s daemon tasks. A
// task that completes with a value produces no call at all; only a failing
// task's error reaches the handler.
type ErrorHandler interface {
	TaskFailed(err error)
}

type loggingErrorHandler struct {
	logger *slog.Logger
}

// NewLoggingErrorHandler returns an ErrorHandler that logs failures through
// logger at error level. A nil logger falls back to slog.Default.
func NewLoggingErrorHandler(logger *slog.Logger) ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingErrorHandler{logger: logger}
}

func (h *loggingErrorHandler) TaskFailed(err error) {
	h.logger.Error("promise: daemon task failed", "error", err)
}

// TaskSet owns a collection of fire-and-forget promises ("daemon tasks"),
// the Go analogue of KJ's TaskSet. Each task entry is a self-removing
// Event: the moment its promise becomes ready, it fetches the result,
// drops itself from the set, and, if the result carried an error, reports
// it to the TaskSet's ErrorHandler, since there is no caller left to
// propagate it to.
type TaskSet struct {
	loop         *Loop
	errorHandler ErrorHandler
	tasks        map[*taskEntry]struct{}
	closed       bool
}

// NewTaskSet creates a TaskSet bound to loop. A nil handler falls back to
// [NewLoggingErrorHandler].
func NewTaskSet(loop *Loop, handler ErrorHandler) *TaskSet {
	if handler == nil {
		handler = NewLoggingErrorHandler(nil)
	}
	return &TaskSet{loop: loop, errorHandler: handler, tasks: make(map[*taskEntry]struct{})}
}

type taskEntry struct {
	set   *TaskSet
	event Event
	node  promiseNode
}

// Add hands ownership of p to s. It is a silent no-op once s has been
// closed.
func (s *TaskSet) Add(p Promise[struct{}]) {
	if s.closed {
		return
	}

	t := &taskEntry{set: s, node: p.node}
	t.event = *newEvent(s.loop, t.fire)
	s.tasks[t] = struct{}{}

	if t.node.onReady(&t.event) {
		t.fire()
	}
}

func (t *taskEntry) fire() any {
	var result ExceptionOrValue
	t.node.get(&result)
	t.node = nil

	delete(t.set.tasks, t)

	if err := result.Err(); err != nil {
		t.set.loop.metrics.RecordTaskFailure(t.set.loop.id)
		t.set.errorHandler.TaskFailed(err)
	}
	return nil
}

// Close cancels every task still outstanding in s and makes s reject any
// further Add.
func (s *TaskSet) Close() {
	s.closed = true
	for t := range s.tasks {
		t.event.unlink()
	}
	s.tasks = nil
}
