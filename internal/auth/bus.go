package auth

import "sync"

// Listener receives AuthState changes.
type Listener func(state AuthState)

// Bus fans out AuthState changes to registered listeners.
//
// Dispatch is synchronous and in registration order: a slow listener
// delays the listeners behind it in the same notification. Callers rely
// on this ordering to observe transitions (including isLoading toggles)
// exactly as they happen.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners []busEntry
}

type busEntry struct {
	id int
	fn Listener
}

// NewBus creates an empty subscription bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing is idempotent.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, busEntry{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.listeners {
			if e.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every listener with the state, in registration order.
// Listeners registered or removed during a notification take effect from
// the next notification.
func (b *Bus) Notify(state AuthState) {
	b.mu.Lock()
	entries := make([]busEntry, len(b.listeners))
	copy(entries, b.listeners)
	b.mu.Unlock()

	for _, e := range entries {
		e.fn(state)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
