// Package lrulist implements an intrusive, generation-stamped LRU list over a
// growable slot pool.
//
// Entries live in a flat slice and are linked by slot index, head = MRU and
// tail = LRU. Slots past the tail form the free chain, so removal, eviction
// and insertion never allocate except when the pool doubles.
//
// Callers hold Handles, not pointers. A Handle stays valid until its entry is
// removed or evicted; after that every operation taking the Handle is a safe
// no-op. Invalidation only bumps the slot's generation, so it is O(1) and never
// needs to find outstanding handles.
//
// A List is not safe for concurrent use; guard it with a mutex if shared.
package lrulist

// DefaultCapacity is the number of slots a List starts with when New is
// passed a non-positive capacity.
const DefaultCapacity = 1 << 10

// Handle is a weak reference to a list entry.
// The zero Handle is never alive.
type Handle struct {
	index uint32
	gen   uint32
}

type entry[T any] struct {
	prev, next uint32
	// gen starts at 1 and is bumped on every invalidation, never reset.
	gen      uint32
	lastUsed uint32
	data     T
}

// List is an LRU-ordered set of entries addressed through Handles.
type List[T any] struct {
	pool  []entry[T]
	size  int
	head  uint32
	tail  uint32
	epoch uint32
}

// New returns an empty list with room for capacity entries before growing.
func New[T any](capacity int) *List[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &List[T]{pool: make([]entry[T], capacity)}
	l.initSlots(0)
	return l
}

// initSlots chains pool[from:] into a free run and stamps first generations.
func (l *List[T]) initSlots(from int) {
	for i := from; i < len(l.pool); i++ {
		l.pool[i].next = uint32(i + 1)
		l.pool[i].gen = 1
	}
}

// Tick advances the epoch by one. Call it once per cache round (a frame).
func (l *List[T]) Tick() { l.epoch++ }

// Epoch returns the current epoch.
func (l *List[T]) Epoch() uint32 { return l.epoch }

// Len returns the number of live entries.
func (l *List[T]) Len() int { return l.size }

// Add inserts data as the most recently used entry.
func (l *List[T]) Add(data T) Handle {
	if l.size == len(l.pool) {
		l.grow()
	}

	if l.size == 0 {
		// The list is empty: head and tail already point at the same free
		// slot, and that slot's next is the start of the free chain.
		e := &l.pool[l.head]
		e.prev = l.head
		e.lastUsed = l.epoch
		e.data = data
		l.tail = l.head
		l.size = 1
		return Handle{index: l.head, gen: e.gen}
	}

	tail := &l.pool[l.tail]
	idx := tail.next
	e := &l.pool[idx]
	tail.next = e.next

	e.prev = idx // the head's prev points at itself
	e.next = l.head
	e.lastUsed = l.epoch
	e.data = data
	l.pool[l.head].prev = idx
	l.head = idx
	l.size++
	return Handle{index: idx, gen: e.gen}
}

// grow doubles the pool and hangs the new slots off the tail.
func (l *List[T]) grow() {
	old := len(l.pool)
	l.pool = append(l.pool, make([]entry[T], old)...)
	l.initSlots(old)
	l.pool[l.tail].next = uint32(old)
}

// IsAlive reports whether h still refers to a live entry.
func (l *List[T]) IsAlive(h Handle) bool {
	return int(h.index) < len(l.pool) && l.pool[h.index].gen == h.gen
}

// Ping marks the entry as used in the current epoch and moves it to the head,
// even when it was already touched this epoch. It returns false if h is stale.
func (l *List[T]) Ping(h Handle) bool {
	if !l.IsAlive(h) {
		return false
	}
	e := &l.pool[h.index]
	e.lastUsed = l.epoch
	if h.index == l.head {
		return true
	}

	// Unlink.
	l.pool[e.prev].next = e.next
	if h.index == l.tail {
		l.tail = e.prev
	} else {
		l.pool[e.next].prev = e.prev
	}

	// Relink at the head.
	l.pool[l.head].prev = h.index
	e.prev = h.index
	e.next = l.head
	l.head = h.index
	return true
}

// Remove invalidates h and returns its slot to the free chain.
// Stale handles are ignored.
func (l *List[T]) Remove(h Handle) {
	if !l.IsAlive(h) {
		return
	}
	e := &l.pool[h.index]
	e.gen++
	var zero T
	e.data = zero

	if l.size == 1 {
		l.size = 0
		return
	}

	switch h.index {
	case l.tail:
		// Already first in the free chain.
		l.tail = e.prev
	case l.head:
		newHead := e.next
		l.pool[newHead].prev = newHead
		l.head = newHead
		l.spliceAfterTail(h.index)
	default:
		l.pool[e.prev].next = e.next
		l.pool[e.next].prev = e.prev
		l.spliceAfterTail(h.index)
	}
	l.size--
}

func (l *List[T]) spliceAfterTail(idx uint32) {
	tail := &l.pool[l.tail]
	l.pool[idx].next = tail.next
	tail.next = idx
}

// EvictLast invalidates the least recently used entry. No-op when empty.
func (l *List[T]) EvictLast() {
	if l.size == 0 {
		return
	}
	e := &l.pool[l.tail]
	e.gen++
	var zero T
	e.data = zero
	if l.size > 1 {
		l.tail = e.prev
	}
	l.size--
}

// Data returns a pointer to the entry's payload, or nil if h is stale.
// The pointer is invalidated by the next Add (the pool may move).
func (l *List[T]) Data(h Handle) *T {
	if !l.IsAlive(h) {
		return nil
	}
	return &l.pool[h.index].data
}

// Last returns the least recently used payload, or nil when empty.
func (l *List[T]) Last() *T {
	if l.size == 0 {
		return nil
	}
	return &l.pool[l.tail].data
}

// LastHandle returns the handle of the least recently used entry.
func (l *List[T]) LastHandle() (Handle, bool) {
	if l.size == 0 {
		return Handle{}, false
	}
	return Handle{index: l.tail, gen: l.pool[l.tail].gen}, true
}

// LastEntryAge returns how many epochs ago the tail entry was last used.
func (l *List[T]) LastEntryAge() uint32 {
	if l.size == 0 {
		return 0
	}
	return l.epoch - l.pool[l.tail].lastUsed
}
