package cart

import "sync"

// Feed is a single-value broadcast channel: every subscriber immediately
// receives the current value, then the latest value after each publish.
// Publishing never blocks on a slow subscriber; an unread value is simply
// replaced by the newer one.
type Feed[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[int]chan T
	nextID  int
}

func newFeed[T any](initial T) *Feed[T] {
	return &Feed[T]{
		current: initial,
		subs:    make(map[int]chan T),
	}
}

// Current returns the most recently published value.
func (f *Feed[T]) Current() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribe registers a listener. The returned channel yields the current
// value right away. The cancel func detaches the listener and closes the
// channel; it is safe to call more than once.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan T, 1)
	ch <- f.current

	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// closeAll detaches every subscriber. Pending cancel funcs become no-ops.
func (f *Feed[T]) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

func (f *Feed[T]) publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = v
	for _, ch := range f.subs {
		// Drop the stale value so the send below cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}
