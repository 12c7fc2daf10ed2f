// Package notify bridges timer lifecycle events to observers that do not use
// the in-process event bus, including observers in other processes.
//
// A [Center] posts [Notification] values under a namespaced [Name] and
// delivers them to observers registered with [Center.Observe] or
// [Center.ObserveAll]. Observers are detached by cancelling the returned
// subscription handle.
//
// Two centers are provided:
//
//   - [LocalCenter] delivers synchronously within the process over an
//     [event.Bus].
//   - [FileCenter] appends each notification as a JSON line to
//     notifications.jsonl in a shared directory. Every FileCenter watching the
//     directory, in this or any other process, picks up new lines and hands
//     them to its observers.
//
// Delivery is best-effort and there is no replay: an observer only sees
// notifications posted after its center started watching.
package notify
