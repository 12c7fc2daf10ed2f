// Package subscription holds cancellation handles for observer subscriptions
// and a thread-safe bag that keeps them alive until they are cancelled
// together.
//
// A [Handle] wraps a cancel function and runs it at most once. Handle identity
// is pointer identity, so the same subscription stored twice in a [Bag] is kept
// once.
//
// [Bag.CancelAll] works in two steps: it cancels a snapshot of the stored
// handles and then clears the set. Each step holds the bag's lock, but the two
// are not atomic with respect to each other. A handle stored between them is
// removed without being cancelled. Callers that need stronger guarantees must
// stop storing before calling CancelAll.
//
// Cancel functions run while the bag's lock is held and must not call back
// into the same bag.
package subscription
