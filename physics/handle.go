package physics

// BodyID is an opaque handle to a body owned by a World. The zero value is
// never a live handle.
type BodyID struct {
	id  uint32
	gen uint32
}

// Valid reports whether the handle was ever issued by a world. It says
// nothing about whether the body is still alive.
func (id BodyID) Valid() bool {
	return id.id > 0
}

// JointID is an opaque handle to a joint owned by a World. The zero value is
// never a live handle.
type JointID struct {
	id  uint32
	gen uint32
}

func (id JointID) Valid() bool {
	return id.id > 0
}

// arena stores world-owned values behind generation-tagged indices so that a
// destroyed handle is detectable instead of silently aliasing a reused slot.
type arena[T any] struct {
	nextID uint32
	gen    []uint32
	vals   []T
	live   []bool
	free   []uint32
}

func (a *arena[T]) insert(v T) (uint32, uint32) {
	var id uint32
	if len(a.free) > 0 {
		id = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	} else {
		a.nextID++
		id = a.nextID
		a.gen = append(a.gen, 0)
		var zero T
		a.vals = append(a.vals, zero)
		a.live = append(a.live, false)
	}
	idx := id - 1
	a.vals[idx] = v
	a.live[idx] = true
	return id, a.gen[idx]
}

func (a *arena[T]) get(id, gen uint32) (T, bool) {
	var zero T
	if id == 0 || id > uint32(len(a.gen)) {
		return zero, false
	}
	idx := id - 1
	if !a.live[idx] || a.gen[idx] != gen {
		return zero, false
	}
	return a.vals[idx], true
}

func (a *arena[T]) alive(id, gen uint32) bool {
	_, ok := a.get(id, gen)
	return ok
}

func (a *arena[T]) remove(id, gen uint32) (T, bool) {
	var zero T
	v, ok := a.get(id, gen)
	if !ok {
		return zero, false
	}
	idx := id - 1
	a.gen[idx]++
	a.vals[idx] = zero
	a.live[idx] = false
	a.free = append(a.free, id)
	return v, true
}

func (a *arena[T]) each(f func(id, gen uint32, v T)) {
	for i := range a.vals {
		if a.live[i] {
			f(uint32(i+1), a.gen[i], a.vals[i])
		}
	}
}
