package promise

// State is a [Signal] that carries a value. Set and Update replace the
// value and resolve any outstanding watcher; Await returns a Promise for
// the value as of the next change.
//
// A State must not be shared by more than one [Loop].
type State[T any] struct {
	Signal
	value T
}

// NewState creates a new State with its initial value set to v.
func NewState[T any](v T) *State[T] {
	return &State[T]{value: v}
}

// Get retrieves the current value of s.
func (s *State[T]) Get() T {
	return s.value
}

// Set replaces s's value and resolves any outstanding watcher.
func (s *State[T]) Set(v T) {
	s.value = v
	s.Notify()
}

// Update sets s's value to f(s.Get()) and resolves any outstanding watcher.
func (s *State[T]) Update(f func(v T) T) {
	s.Set(f(s.value))
}

// Await returns a Promise for s's value as of the next Set or Update call.
func (s *State[T]) Await() Promise[T] {
	return Then(s.Signal.Watch(), func(struct{}) (T, error) {
		return s.Get(), nil
	})
}
