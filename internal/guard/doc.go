// Package guard provides a mutex-protected value cell.
//
// A [Cell] owns exactly one value and only exposes it inside a callback that
// runs while the cell's lock is held. Every read and write on the same cell is
// mutually exclusive with every other read and write.
//
// # Basic Usage
//
//	counts := guard.New(map[string]int{})
//
//	counts.Mutate(func(m *map[string]int) {
//	    (*m)["ticks"]++
//	})
//
//	n := guard.Read(counts, func(m map[string]int) int {
//	    return m["ticks"]
//	})
//
// # Reentrancy
//
// The lock is not reentrant. A callback that calls back into the same cell
// deadlocks. Callbacks must also avoid blocking I/O: the lock is held for the
// whole duration of the callback.
package guard
