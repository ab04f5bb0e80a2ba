package promise

// Signal is a broadcast notification point: any number of promises can
// watch it with [Signal.Watch], and [Signal.Notify] resolves every watcher
// outstanding at the time it is called. A watcher added after a Notify call
// waits for the next one; Notify does not replay past itself.
//
// A Signal must not be watched from more than one [Loop].
type Signal struct {
	watchers map[*signalWatch]struct{}
}

func (s *Signal) addWatcher(w *signalWatch) {
	if s.watchers == nil {
		s.watchers = make(map[*signalWatch]struct{})
	}
	s.watchers[w] = struct{}{}
}

// Notify resolves every outstanding watcher of s. A watcher added after
// Notify returns is not affected by this call; it waits for the next one.
func (s *Signal) Notify() {
	watchers := s.watchers
	s.watchers = nil
	for w := range watchers {
		w.ready.arm()
	}
}

// Watch returns a Promise that becomes ready the next time Notify is
// called.
func (s *Signal) Watch() Promise[struct{}] {
	w := &signalWatch{}
	s.addWatcher(w)
	return Promise[struct{}]{node: w}
}

type signalWatch struct {
	ready onReadyEvent
}

func (w *signalWatch) onReady(event *Event) bool {
	return w.ready.init(event)
}

func (w *signalWatch) get(out *ExceptionOrValue) {
	out.Value = struct{}{}
}

func (w *signalWatch) innerForTrace() promiseNode { return nil }
