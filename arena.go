package gpustate

import "sync"

// Arena owns the native objects created for one Context and releases them
// together. Objects may be tracked and released from any goroutine.
type Arena struct {
	mu    sync.Mutex
	items map[Releaser]int // index into order
	order []Releaser
	holes int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{items: make(map[Releaser]int)}
}

// Track adds r to the arena. Tracking the same object twice is a no-op.
func (a *Arena) Track(r Releaser) {
	if r == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.items[r]; ok {
		return
	}
	a.items[r] = len(a.order)
	a.order = append(a.order, r)
}

// Forget removes r without releasing it, for objects released by hand.
func (a *Arena) Forget(r Releaser) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.items[r]
	if !ok {
		return
	}
	delete(a.items, r)
	a.order[i] = nil
	a.holes++
	if a.holes > len(a.order)/2 {
		a.compact()
	}
}

// compact drops forgotten entries from order, keeping the tracking order.
func (a *Arena) compact() {
	n := 0
	for _, r := range a.order {
		if r == nil {
			continue
		}
		a.order[n] = r
		a.items[r] = n
		n++
	}
	clear(a.order[n:])
	a.order = a.order[:n]
	a.holes = 0
}

// Len returns the number of tracked objects.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// ReleaseAll releases every tracked object, most recently tracked first so
// views go before the resources they reference, and empties the arena. It
// returns the number of objects released.
func (a *Arena) ReleaseAll() int {
	a.mu.Lock()
	order := a.order
	a.order = nil
	a.items = make(map[Releaser]int)
	a.holes = 0
	a.mu.Unlock()

	n := 0
	for i := len(order) - 1; i >= 0; i-- {
		if r := order[i]; r != nil {
			r.Release()
			n++
		}
	}
	return n
}
