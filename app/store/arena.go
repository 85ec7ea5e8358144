package store

import "fmt"

// Ref is a stable handle to a value held in an arena. A Ref stays valid
// while unrelated values are inserted or removed; once its own slot is freed
// the generation no longer matches and lookups through it fail.
type Ref struct {
	index      uint32
	generation uint32
}

func (r Ref) String() string {
	return fmt.Sprintf("ref(%d@%d)", r.index, r.generation)
}

type slot struct {
	generation uint32
	value      Value
	occupied   bool
}

// arena owns live values and hands out generational references to them.
// It is not safe for concurrent use; Store guards it with its values lock.
type arena struct {
	slots []slot
	free  []uint32
	live  int
}

func newArena() *arena {
	return &arena{}
}

// insert stores v in a free slot and returns its reference.
func (a *arena) insert(v Value) Ref {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		idx = uint32(len(a.slots) - 1)
	}

	s := &a.slots[idx]
	s.generation++
	s.value = v
	s.occupied = true
	a.live++
	return Ref{index: idx, generation: s.generation}
}

// get returns the value behind r, or false when r is stale.
func (a *arena) get(r Ref) (Value, bool) {
	if int(r.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[r.index]
	if !s.occupied || s.generation != r.generation {
		return nil, false
	}
	return s.value, true
}

// mustGet is get for references the key table vouches for; a miss means the
// key table and the arena disagree, which is a bug.
func (a *arena) mustGet(r Ref) Value {
	v, ok := a.get(r)
	if !ok {
		panic(fmt.Sprintf("store: dangling value %s", r))
	}
	return v
}

// remove frees the slot behind r. It reports false for stale references.
func (a *arena) remove(r Ref) bool {
	if _, ok := a.get(r); !ok {
		return false
	}
	s := &a.slots[r.index]
	s.value = nil
	s.occupied = false
	a.free = append(a.free, r.index)
	a.live--
	return true
}

// clear frees every slot. Generations survive so references handed out
// before the clear stay detectably stale.
func (a *arena) clear() {
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		s.value = nil
		s.occupied = false
		a.free = append(a.free, uint32(i))
	}
	a.live = 0
}

func (a *arena) len() int {
	return a.live
}
