package alarm

import "testing"

func TestSetGetRoundTrip(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 30)
	if got := r.Get(1, 0); got != 30 {
		t.Fatalf("Get = %d, want 30", got)
	}
}

func TestGetAbsentReturnsZero(t *testing.T) {
	r := NewRegistry()
	if got := r.Get(1, 0); got != 0 {
		t.Fatalf("Get of absent slot = %d, want 0", got)
	}
}

func TestTickAllDecrementsPositiveOnly(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 2)
	r.Set(1, 1, 0)
	r.Set(1, 2, -5)

	r.TickAll()

	if got := r.Get(1, 0); got != 1 {
		t.Fatalf("slot 0 = %d, want 1", got)
	}
	if got := r.Get(1, 1); got != 0 {
		t.Fatalf("slot 1 = %d, want 0 (zero slots persist untouched)", got)
	}
	if got := r.Get(1, 2); got != -5 {
		t.Fatalf("slot 2 = %d, want -5 (negative slots untouched)", got)
	}
}

func TestDeletePrunesEmptyInstanceEntry(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 5)
	r.Set(1, 1, 10)

	r.Delete(1, 0)
	if snap := r.Snapshot(1); len(snap) != 1 {
		t.Fatalf("Snapshot after deleting one of two slots = %v, want 1 entry", snap)
	}

	r.Delete(1, 1)
	if snap := r.Snapshot(1); len(snap) != 0 {
		t.Fatalf("Snapshot after deleting last slot = %v, want empty", snap)
	}
	if _, ok := r.instances[1]; ok {
		t.Fatal("expected instance entry to be pruned once empty")
	}
}

func TestDeleteAll(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 5)
	r.Set(2, 0, 5)

	r.DeleteAll()

	if len(r.Snapshot(1)) != 0 || len(r.Snapshot(2)) != 0 {
		t.Fatal("expected every instance's alarms to be cleared")
	}
}

func TestRemoveInstanceDropsWholeEntry(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 5)
	r.Set(1, 1, 10)

	r.RemoveInstance(1)

	if snap := r.Snapshot(1); len(snap) != 0 {
		t.Fatalf("Snapshot after RemoveInstance = %v, want empty", snap)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Set(1, 0, 5)

	snap := r.Snapshot(1)
	snap[0] = 999

	if got := r.Get(1, 0); got != 5 {
		t.Fatalf("Get after mutating snapshot = %d, want unaffected 5", got)
	}
}
