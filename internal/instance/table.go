package instance

// Handle is a generational reference into a Table. A Handle to an
// instance that a Delete, ClearNonPersistent, ClearDeleted, or ClearAll
// removed reads back as absent afterward rather than aliasing whatever
// instance later reoccupies the slot (spec.md §9).
type Handle struct {
	index int32
	gen   uint32
}

type tableSlot struct {
	gen  uint32
	live bool
	inst *Instance
}

// Table is the instance table (C8). Storage grows the way a Go slice
// already does (amortized doubling via append), which is the same
// capacity-doubling behavior the source hand-rolls for its instance
// array; order is kept sorted ascending by instance id, mirroring the
// source's "insert of an id lower than the running max shifts later
// entries forward" rule. Compaction (ClearNonPersistent, ClearDeleted)
// rewrites order in place with a "placed" write cursor, grounded on the
// teacher's CoprocessorManager worker-slice compaction shape.
type Table struct {
	slots []tableSlot
	order []int32 // slot indices, ascending by slots[x].inst.ID
	free  []int32
}

// NewTable returns an empty instance table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a new instance with the given id, object index, position,
// and object-definition defaults, returning a Handle to it.
func (t *Table) Add(id, objectIndex int32, x, y float64, def ObjectDefaults) Handle {
	inst := newInstance(id, objectIndex, x, y, def)

	var idx int32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx].gen++
		t.slots[idx].live = true
		t.slots[idx].inst = inst
	} else {
		idx = int32(len(t.slots))
		t.slots = append(t.slots, tableSlot{gen: 1, live: true, inst: inst})
	}

	pos := len(t.order)
	for i, si := range t.order {
		if t.slots[si].inst.ID > id {
			pos = i
			break
		}
	}
	t.order = append(t.order, 0)
	copy(t.order[pos+1:], t.order[pos:])
	t.order[pos] = idx

	return Handle{index: idx, gen: t.slots[idx].gen}
}

// Get resolves a Handle to its Instance. Returns false if the handle's
// slot was freed or reused since it was obtained.
func (t *Table) Get(h Handle) (*Instance, bool) {
	if h.index < 0 || int(h.index) >= len(t.slots) {
		return nil, false
	}
	s := t.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return s.inst, true
}

// At returns the instance at the given position in id order, mirroring
// the source's plain index access into the instance array.
func (t *Table) At(pos int) (*Instance, bool) {
	if pos < 0 || pos >= len(t.order) {
		return nil, false
	}
	return t.slots[t.order[pos]].inst, true
}

// Len returns the number of live instances.
func (t *Table) Len() int {
	return len(t.order)
}

// Delete removes the instance with the given id, shifting later entries
// back to close the gap.
//
// The source's predicate for this scan is _list[i].id < id, which finds
// and removes the first lower-id neighbor instead of the matching
// instance - almost certainly a bug (spec.md §9). This implementation
// uses the corrected == id predicate.
func (t *Table) Delete(id int32) bool {
	for i, si := range t.order {
		if t.slots[si].inst.ID == id {
			t.freeSlot(si)
			t.order = append(t.order[:i], t.order[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Table) freeSlot(idx int32) {
	t.slots[idx].live = false
	t.slots[idx].inst = nil
	t.free = append(t.free, idx)
}

// ClearAll drops every instance without regard to persistence or
// existence.
func (t *Table) ClearAll() {
	for _, si := range t.order {
		t.freeSlot(si)
	}
	t.order = t.order[:0]
}

// ClearNonPersistent keeps only instances with Persistent && Exists,
// compacting order in place.
func (t *Table) ClearNonPersistent() {
	t.compact(func(i *Instance) bool { return i.Persistent && i.Exists })
}

// ClearDeleted keeps only instances with Exists set, compacting order in
// place. This is the counterpart to instances being soft-marked
// non-existent elsewhere (e.g. by an instance-destroy event) without an
// immediate Delete call.
func (t *Table) ClearDeleted() {
	t.compact(func(i *Instance) bool { return i.Exists })
}

// compact rewrites t.order to keep only slots whose instance satisfies
// keep, in place, using a "placed" write cursor - the same shape as the
// teacher's CoprocessorManager completion-map pruning.
func (t *Table) compact(keep func(*Instance) bool) {
	placed := 0
	for _, si := range t.order {
		if keep(t.slots[si].inst) {
			t.order[placed] = si
			placed++
		} else {
			t.freeSlot(si)
		}
	}
	t.order = t.order[:placed]
}

// GetInstanceByNumber implements get_by_number(n): n > 100000 is
// interpreted as an instance id (order is ascending, so the scan can
// stop as soon as it passes n); otherwise n is an object-class id and
// the first matching live entry in order is returned.
func (t *Table) GetInstanceByNumber(n int32) (*Instance, bool) {
	if n > 100000 {
		for _, si := range t.order {
			inst := t.slots[si].inst
			if inst.ID == n {
				return inst, true
			}
			if inst.ID > n {
				break
			}
		}
		return nil, false
	}
	for _, si := range t.order {
		inst := t.slots[si].inst
		if inst.ObjectIndex == n {
			return inst, true
		}
	}
	return nil, false
}
