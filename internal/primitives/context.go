// Context is the machine-wide extended state shared by guards, actions and hooks.
// It is owned by one machine; sub-machines get their own.
package primitives

import "sync"

// Context is a key-value store backed by sync.Map so diagnostics (for example
// an HTTP status endpoint) can read it while the owning goroutine dispatches.
type Context struct {
	data sync.Map
}

// NewContext creates a new Context with an empty map.
func NewContext() *Context {
	return &Context{}
}

// Get retrieves a value by key.
func (c *Context) Get(key string) (any, bool) {
	return c.data.Load(key)
}

// Set stores a value by key.
func (c *Context) Set(key string, val any) {
	c.data.Store(key, val)
}

// Delete removes a key-value pair.
func (c *Context) Delete(key string) {
	c.data.Delete(key)
}

// Int returns the int stored under key, or 0.
func (c *Context) Int(key string) int {
	v, ok := c.data.Load(key)
	if !ok {
		return 0
	}
	n, _ := v.(int)
	return n
}

// Add adds delta to the int stored under key and returns the new value.
// Only the dispatching goroutine writes, so load-then-store is sufficient.
func (c *Context) Add(key string, delta int) int {
	n := c.Int(key) + delta
	c.data.Store(key, n)
	return n
}

// Snapshot returns a copy of the context data.
func (c *Context) Snapshot() map[string]any {
	snap := map[string]any{}
	c.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}

// Lookup returns the value under key asserted to T.
func Lookup[T any](c *Context, key string) (T, bool) {
	var zero T
	v, ok := c.data.Load(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
