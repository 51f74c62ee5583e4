// Package dirty provides fixed-capacity slot arrays that remember which
// slots changed since the last time the changes were consumed.
//
// An [Array] never grows or shrinks after construction. Writing a value that
// is equal to the one already stored is ignored, so a caller can rebuild the
// same table every frame without producing spurious work downstream.
//
// Two ranges are tracked per array:
//
//   - the dirty range: lowest to highest slot changed since the last
//     [Array.Consume] call (a single contiguous span, possibly covering
//     unchanged slots in between)
//   - the extent: lowest to highest slot ever written since the last
//     [Array.Clear], which bounds where non-zero values can live
//
// Arrays are not safe for concurrent use.
package dirty

// Array is a fixed-length table of comparable values with a consumable
// dirty range.
type Array[T comparable] struct {
	items []T

	// dirty span [start, end); end == 0 means clean.
	start, end int

	// written span [lo, hi); hi == 0 means nothing written.
	lo, hi int
}

// New creates an array with n zero-valued slots.
func New[T comparable](n int) *Array[T] {
	if n < 0 {
		n = 0
	}
	return &Array[T]{items: make([]T, n)}
}

// Len returns the fixed number of slots.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// At returns the value stored in slot i.
func (a *Array[T]) At(i int) T {
	return a.items[i]
}

// Set stores v in slot i. Storing a value equal to the current one is a no-op
// and leaves the dirty range untouched. Panics if i is out of range.
func (a *Array[T]) Set(i int, v T) {
	if a.items[i] == v {
		return
	}
	a.items[i] = v
	a.mark(i)
}

func (a *Array[T]) mark(i int) {
	if a.end == 0 {
		a.start, a.end = i, i+1
	} else {
		a.start = min(a.start, i)
		a.end = max(a.end, i+1)
	}
	if a.hi == 0 {
		a.lo, a.hi = i, i+1
	} else {
		a.lo = min(a.lo, i)
		a.hi = max(a.hi, i+1)
	}
}

// MarkDirty forces slots [start, start+count) into the dirty range without
// changing their values. Out of range portions are clipped.
func (a *Array[T]) MarkDirty(start, count int) {
	end := min(start+count, len(a.items))
	start = max(start, 0)
	if end <= start {
		return
	}
	if a.end == 0 {
		a.start, a.end = start, end
		return
	}
	a.start = min(a.start, start)
	a.end = max(a.end, end)
}

// IsDirty reports whether any slot changed since the last Consume.
func (a *Array[T]) IsDirty() bool {
	return a.end != 0
}

// DirtyItems returns the minimal contiguous range covering every slot
// written since the last Consume. A count of zero means nothing changed.
func (a *Array[T]) DirtyItems() (start, count int) {
	if a.end == 0 {
		return 0, 0
	}
	return a.start, a.end - a.start
}

// Consume returns the dirty range and resets it to (0, 0).
func (a *Array[T]) Consume() (start, count int) {
	start, count = a.DirtyItems()
	a.start, a.end = 0, 0
	return start, count
}

// Extent returns the range of slots written since the last Clear. Slots
// outside the extent are guaranteed to hold the zero value.
func (a *Array[T]) Extent() (start, count int) {
	if a.hi == 0 {
		return 0, 0
	}
	return a.lo, a.hi - a.lo
}

// Slice returns slots [start, start+count) without copying. The returned
// slice aliases the array and is only valid until the next write.
func (a *Array[T]) Slice(start, count int) []T {
	return a.items[start : start+count : start+count]
}

// Clear zeroes every slot and resets both the dirty range and the extent.
func (a *Array[T]) Clear() {
	clear(a.items)
	a.start, a.end = 0, 0
	a.lo, a.hi = 0, 0
}

// Union returns the smallest range covering both (s1, c1) and (s2, c2).
// Empty ranges (count == 0) are ignored.
func Union(s1, c1, s2, c2 int) (start, count int) {
	switch {
	case c1 == 0:
		return s2, c2
	case c2 == 0:
		return s1, c1
	}
	start = min(s1, s2)
	return start, max(s1+c1, s2+c2) - start
}
