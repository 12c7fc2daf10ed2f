package guard

import "sync"

// Cell is a value guarded by a mutex. A Cell must not be copied after first use.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
}

// New creates a Cell holding v.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Load returns a copy of the contained value.
// For reference types (maps, slices, pointers) the copy shares backing storage,
// so callers that need to inspect contents should use Read instead.
func (c *Cell[T]) Load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Store replaces the contained value.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

// Mutate runs fn with exclusive access to the contained value.
func (c *Cell[T]) Mutate(fn func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.value)
}

// Swap replaces the contained value and returns the previous one.
func (c *Cell[T]) Swap(v T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.value
	c.value = v
	return old
}

// Read runs fn on the contained value while holding the cell's lock and
// returns fn's result.
func Read[T, U any](c *Cell[T], fn func(T) U) U {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.value)
}

// Write runs fn with a pointer to the contained value while holding the
// cell's lock and returns fn's result.
func Write[T, U any](c *Cell[T], fn func(*T) U) U {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&c.value)
}

// Append adds items to the end of a guarded slice.
func Append[E any](c *Cell[[]E], items ...E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = append(c.value, items...)
}
