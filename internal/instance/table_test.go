package instance

import "testing"

func ids(t *Table) []int32 {
	out := make([]int32, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		inst, _ := t.At(i)
		out = append(out, inst.ID)
	}
	return out
}

func sameInts(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddKeepsAscendingOrder(t *testing.T) {
	tb := NewTable()
	tb.Add(30, 1, 0, 0, ObjectDefaults{})
	tb.Add(10, 1, 0, 0, ObjectDefaults{})
	tb.Add(20, 1, 0, 0, ObjectDefaults{})

	want := []int32{10, 20, 30}
	if got := ids(tb); !sameInts(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func TestHandleInvalidatedAfterDelete(t *testing.T) {
	tb := NewTable()
	h := tb.Add(1, 1, 0, 0, ObjectDefaults{})

	if _, ok := tb.Get(h); !ok {
		t.Fatal("expected handle to resolve before delete")
	}
	if !tb.Delete(1) {
		t.Fatal("expected delete to find instance 1")
	}
	if _, ok := tb.Get(h); ok {
		t.Fatal("expected stale handle to fail to resolve after delete")
	}
}

func TestHandleInvalidatedAfterSlotReuse(t *testing.T) {
	tb := NewTable()
	h1 := tb.Add(1, 1, 0, 0, ObjectDefaults{})
	tb.Delete(1)
	tb.Add(2, 1, 0, 0, ObjectDefaults{})

	if _, ok := tb.Get(h1); ok {
		t.Fatal("expected handle from freed slot to fail after reuse, generation must differ")
	}
}

// TestDeleteUsesEqualityNotLessThan verifies the fixed delete(id)
// predicate (== id) against the source's documented bug (< id), which
// would delete the first lower-id neighbor instead of the target.
func TestDeleteUsesEqualityNotLessThan(t *testing.T) {
	tb := NewTable()
	tb.Add(10, 1, 0, 0, ObjectDefaults{})
	tb.Add(20, 1, 0, 0, ObjectDefaults{})
	tb.Add(30, 1, 0, 0, ObjectDefaults{})

	if !tb.Delete(20) {
		t.Fatal("expected delete to report success")
	}

	want := []int32{10, 30}
	if got := ids(tb); !sameInts(got, want) {
		t.Fatalf("ids after delete(20) = %v, want %v (buggy predicate would have removed 10)", got, want)
	}
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	tb := NewTable()
	tb.Add(10, 1, 0, 0, ObjectDefaults{})

	if tb.Delete(99) {
		t.Fatal("expected delete of absent id to report failure")
	}
	if tb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tb.Len())
	}
}

func TestClearAll(t *testing.T) {
	tb := NewTable()
	tb.Add(1, 1, 0, 0, ObjectDefaults{Persistent: true})
	tb.Add(2, 1, 0, 0, ObjectDefaults{})

	tb.ClearAll()
	if tb.Len() != 0 {
		t.Fatalf("Len() after ClearAll = %d, want 0", tb.Len())
	}
}

func TestClearNonPersistentKeepsPersistentExisting(t *testing.T) {
	tb := NewTable()
	tb.Add(1, 1, 0, 0, ObjectDefaults{Persistent: true})
	tb.Add(2, 1, 0, 0, ObjectDefaults{Persistent: false})
	h3 := tb.Add(3, 1, 0, 0, ObjectDefaults{Persistent: true})

	inst3, _ := tb.Get(h3)
	inst3.Exists = false // persistent but no longer existing: still pruned

	tb.ClearNonPersistent()

	want := []int32{1}
	if got := ids(tb); !sameInts(got, want) {
		t.Fatalf("ids after ClearNonPersistent = %v, want %v", got, want)
	}
}

func TestClearDeletedKeepsOnlyExisting(t *testing.T) {
	tb := NewTable()
	tb.Add(1, 1, 0, 0, ObjectDefaults{})
	h2 := tb.Add(2, 1, 0, 0, ObjectDefaults{})
	tb.Add(3, 1, 0, 0, ObjectDefaults{})

	inst2, _ := tb.Get(h2)
	inst2.Exists = false

	tb.ClearDeleted()

	want := []int32{1, 3}
	if got := ids(tb); !sameInts(got, want) {
		t.Fatalf("ids after ClearDeleted = %v, want %v", got, want)
	}
}

func TestGetInstanceByNumberInstanceID(t *testing.T) {
	tb := NewTable()
	tb.Add(100001, 5, 0, 0, ObjectDefaults{})
	tb.Add(100002, 6, 0, 0, ObjectDefaults{})

	inst, ok := tb.GetInstanceByNumber(100002)
	if !ok {
		t.Fatal("expected to find instance 100002")
	}
	if inst.ObjectIndex != 6 {
		t.Fatalf("ObjectIndex = %d, want 6", inst.ObjectIndex)
	}

	if _, ok := tb.GetInstanceByNumber(999999); ok {
		t.Fatal("expected absent instance id to fail")
	}
}

func TestGetInstanceByNumberObjectClass(t *testing.T) {
	tb := NewTable()
	tb.Add(1, 7, 0, 0, ObjectDefaults{})
	tb.Add(2, 7, 0, 0, ObjectDefaults{})
	tb.Add(3, 9, 0, 0, ObjectDefaults{})

	inst, ok := tb.GetInstanceByNumber(7)
	if !ok {
		t.Fatal("expected to find first instance of object class 7")
	}
	if inst.ID != 1 {
		t.Fatalf("ID = %d, want 1 (first match)", inst.ID)
	}
}

func TestNewInstanceDefaults(t *testing.T) {
	tb := NewTable()
	h := tb.Add(1, 1, 50, 60, ObjectDefaults{Solid: true, Persistent: true})
	inst, _ := tb.Get(h)

	if inst.X != 50 || inst.Y != 60 {
		t.Fatalf("X,Y = %v,%v want 50,60", inst.X, inst.Y)
	}
	if inst.XStart != 50 || inst.YStart != 60 || inst.XPrevious != 50 || inst.YPrevious != 60 {
		t.Fatal("expected xstart/ystart/xprevious/yprevious to mirror the initial position")
	}
	if inst.GravityDirection != 270 {
		t.Fatalf("GravityDirection = %v, want 270", inst.GravityDirection)
	}
	if inst.ImageBlend != 0xFFFFFF {
		t.Fatalf("ImageBlend = %x, want FFFFFF", inst.ImageBlend)
	}
	if inst.ImageXScale != 1 || inst.ImageYScale != 1 || inst.ImageSpeed != 1 || inst.ImageAlpha != 1 {
		t.Fatal("expected unit scale/speed/alpha defaults")
	}
	if inst.PathIndex != -1 || inst.TimelineIndex != -1 {
		t.Fatal("expected path_index and timeline_index defaults of -1")
	}
	if !inst.Solid || !inst.Persistent {
		t.Fatal("expected object defaults to be copied onto the instance")
	}
}
