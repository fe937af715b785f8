// Package alarm implements the alarm registry (C9): a nested
// instance -> slot -> value map tracking countdown timers.
//
// The original source keeps this as a process-wide std::map (Alarm.cpp).
// spec.md §9 flags that as global mutable state to re-architect away;
// here it is an explicitly owned Registry value, threaded into the tick
// and event-dispatch call sites rather than reached for as a package
// global, following the same register/unregister-with-cleanup shape as
// the teacher's MachineMonitor.cpus map.
package alarm

// Registry holds every instance's alarm slots.
type Registry struct {
	instances map[int32]map[uint32]int32
}

// NewRegistry returns an empty alarm registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[int32]map[uint32]int32)}
}

// Set stores value into instance's alarm slot.
func (r *Registry) Set(instance int32, slot uint32, value int32) {
	slots, ok := r.instances[instance]
	if !ok {
		slots = make(map[uint32]int32)
		r.instances[instance] = slots
	}
	slots[slot] = value
}

// Get returns instance's alarm slot value, or 0 if the instance or slot
// is absent.
func (r *Registry) Get(instance int32, slot uint32) int32 {
	return r.instances[instance][slot]
}

// TickAll decrements every positive slot across every instance by one.
// Slots at or below zero are left untouched - zero-value slots persist
// until explicitly deleted, matching the source's AlarmUpdateAll.
func (r *Registry) TickAll() {
	for _, slots := range r.instances {
		for slot, v := range slots {
			if v > 0 {
				slots[slot] = v - 1
			}
		}
	}
}

// Delete removes a single slot, pruning the instance's entry entirely if
// it is now empty.
func (r *Registry) Delete(instance int32, slot uint32) {
	slots, ok := r.instances[instance]
	if !ok {
		return
	}
	delete(slots, slot)
	if len(slots) == 0 {
		delete(r.instances, instance)
	}
}

// DeleteAll clears the entire registry.
func (r *Registry) DeleteAll() {
	r.instances = make(map[int32]map[uint32]int32)
}

// RemoveInstance drops an instance's whole alarm entry regardless of its
// contents, e.g. when the instance itself is destroyed.
func (r *Registry) RemoveInstance(instance int32) {
	delete(r.instances, instance)
}

// Snapshot returns a copy of instance's slot map, empty if the instance
// has no alarm entry.
func (r *Registry) Snapshot(instance int32) map[uint32]int32 {
	out := make(map[uint32]int32, len(r.instances[instance]))
	for slot, v := range r.instances[instance] {
		out[slot] = v
	}
	return out
}
