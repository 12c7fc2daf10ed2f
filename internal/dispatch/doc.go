// Package dispatch provides the execution contexts that timer ticks and
// cancel handlers run on.
//
// An [Executor] accepts work with Async. Two implementations are provided:
//
//   - [Queue]: a serial FIFO executor backed by a single goroutine. Tasks run
//     one at a time in submission order. [Main] returns a process-wide queue.
//   - [Pool]: a bounded concurrent executor. Tasks may run in parallel.
//
// [Queue.AsyncAfter] schedules delayed work and returns a [WorkItem] that can
// be cancelled before it runs. [Debouncer] builds on it to run a callback only
// for the last value submitted within a delay window.
//
// Panics raised by submitted tasks are recovered and logged so that one
// failing task does not stop the executor.
package dispatch
