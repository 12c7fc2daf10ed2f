package subscription

import "github.com/Iron-Ham/cfoundation/internal/guard"

// Bag is a set of handles guarded by a mutex. Cancel functions run by
// CancelAll must not call back into the same Bag.
type Bag struct {
	handles *guard.Cell[map[*Handle]struct{}]

	// betweenPhases, if set, runs after the cancel step of CancelAll and
	// before the clear step. Tests use it to land a Store in the gap.
	betweenPhases func()
}

// NewBag creates a Bag seeded with initial. Nil handles are skipped.
func NewBag(initial ...*Handle) *Bag {
	set := make(map[*Handle]struct{}, len(initial))
	for _, h := range initial {
		if h != nil {
			set[h] = struct{}{}
		}
	}
	return &Bag{handles: guard.New(set)}
}

// Store adds h to the bag. Storing a handle that is already present, or a
// nil handle, does nothing.
func (b *Bag) Store(h *Handle) {
	if h == nil {
		return
	}
	b.handles.Mutate(func(set *map[*Handle]struct{}) {
		(*set)[h] = struct{}{}
	})
}

// Contains reports whether h is in the bag.
func (b *Bag) Contains(h *Handle) bool {
	return guard.Read(b.handles, func(set map[*Handle]struct{}) bool {
		_, ok := set[h]
		return ok
	})
}

// Remove takes h out of the bag without cancelling it. It returns h and true
// if h was present.
func (b *Bag) Remove(h *Handle) (*Handle, bool) {
	ok := guard.Write(b.handles, func(set *map[*Handle]struct{}) bool {
		if _, ok := (*set)[h]; !ok {
			return false
		}
		delete(*set, h)
		return true
	})
	if !ok {
		return nil, false
	}
	return h, true
}

// CancelAll cancels every stored handle and then empties the bag.
//
// The cancel step runs each handle's cancel function while the bag's lock is
// held, so a cancel function that calls Store, Remove or any other method of
// this bag deadlocks. The clear step takes the lock again; a handle stored
// between the two steps is dropped without being cancelled.
func (b *Bag) CancelAll() {
	b.handles.Mutate(func(set *map[*Handle]struct{}) {
		for h := range *set {
			h.Cancel()
		}
	})
	if b.betweenPhases != nil {
		b.betweenPhases()
	}
	b.clear()
}

func (b *Bag) clear() {
	b.handles.Store(make(map[*Handle]struct{}))
}

// Count returns the number of stored handles.
func (b *Bag) Count() int {
	return guard.Read(b.handles, func(set map[*Handle]struct{}) int {
		return len(set)
	})
}

// IsEmpty reports whether the bag holds no handles.
func (b *Bag) IsEmpty() bool {
	return b.Count() == 0
}
