package cache

import "sync"

// Mutex is a mutual-exclusion lock with FIFO acquisition order. Each waiter
// chains onto the previous holder's release channel, so callers acquire the
// lock in the order they requested it. There is no timeout or cancellation;
// callers needing bounded waits must build that above this primitive.
type Mutex struct {
	mu   sync.Mutex
	tail chan struct{}
}

// Lock blocks until the lock is held and returns the release func, which
// must be called exactly once. Extra calls are no-ops.
func (m *Mutex) Lock() (unlock func()) {
	gate := make(chan struct{})

	m.mu.Lock()
	prev := m.tail
	m.tail = gate
	m.mu.Unlock()

	if prev != nil {
		<-prev
	}

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Do runs fn while holding the lock. The lock is released even when fn
// returns an error or panics; the error reaches this caller only and the
// queue keeps advancing for subsequent callers.
func (m *Mutex) Do(fn func() error) error {
	unlock := m.Lock()
	defer unlock()

	return fn()
}
