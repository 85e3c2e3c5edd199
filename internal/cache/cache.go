// Package cache holds the process-wide registry state: a slot-keyed store
// whose every read and write runs under a FIFO mutex, so that two in-flight
// requests can never observe each other's partial updates.
package cache

import (
	"fmt"
	"sync"
)

// Slot keys. These are the only shared mutable state in the process; all
// access goes through SafeGet, SafeSet and SafeUpdate.
const (
	SlotAllowedOrgs = "allowedOrgs"
	SlotTools       = "tools"
	SlotToolsets    = "toolsets"
)

type Cache struct {
	op    Mutex
	slots map[string]any
}

func New() *Cache {
	return &Cache{slots: make(map[string]any)}
}

var (
	instanceMu sync.Mutex
	instance   *Cache
)

// Instance returns the one cache for the process. First-time construction is
// guarded by its own lock, distinct from the operational mutex, so ordinary
// read/write traffic is never blocked behind initialization once the
// instance exists.
func Instance() *Cache {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		instance = New()
	}
	return instance
}

// EnsureSlot initializes the slot with init() if it is not present yet.
func (c *Cache) EnsureSlot(key string, init func() any) {
	// Do never returns an error here; the closure cannot fail.
	_ = c.op.Do(func() error {
		if _, ok := c.slots[key]; !ok {
			c.slots[key] = init()
		}
		return nil
	})
}

// SafeGet returns the current value for key, or nil when unset.
func (c *Cache) SafeGet(key string) any {
	var value any
	_ = c.op.Do(func() error {
		value = c.slots[key]
		return nil
	})
	return value
}

// SafeSet replaces the value for key.
func (c *Cache) SafeSet(key string, value any) {
	_ = c.op.Do(func() error {
		c.slots[key] = value
		return nil
	})
}

// SafeUpdate reads the current value, applies fn and stores the result, all
// as one step under the operational mutex. Concurrent SafeUpdate calls on
// the same key are fully serialized: fn must derive its output only from the
// value it is handed, never from a reference captured earlier. When fn
// returns an error the returned value is still stored; transforms that want
// to decline without mutating should hand back their input unchanged.
func (c *Cache) SafeUpdate(key string, fn func(current any) (any, error)) (any, error) {
	var (
		next  any
		fnErr error
	)
	_ = c.op.Do(func() error {
		next, fnErr = fn(c.slots[key])
		c.slots[key] = next
		return nil
	})
	return next, fnErr
}

// Get is a typed SafeGet. An unset slot yields the zero value.
func Get[T any](c *Cache, key string) T {
	value, _ := c.SafeGet(key).(T)
	return value
}

// Update is a typed SafeUpdate. A slot holding a value of the wrong type is
// a programming error and reported as such.
func Update[T any](c *Cache, key string, fn func(current T) (T, error)) (T, error) {
	next, err := c.SafeUpdate(key, func(current any) (any, error) {
		typed, ok := current.(T)
		if current != nil && !ok {
			var zero T
			return current, fmt.Errorf("slot %q holds %T, want %T", key, current, zero)
		}
		return fn(typed)
	})
	typed, _ := next.(T)
	return typed, err
}
