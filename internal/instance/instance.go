// Package instance implements the instance table (C8): a growable,
// id-ordered collection of live game-object instances supporting id and
// object-class lookup plus in-place compaction.
//
// Handles into the table are generational rather than raw pointers or
// plain indices (spec.md §9's redesign note): a Handle pairs a slot index
// with a generation counter, so a Handle to an instance removed by a
// delete or compaction reads back as absent afterward instead of aliasing
// whatever instance later reoccupies that slot.
package instance

// Instance is a single live game-object instance. Field defaults mirror
// _InitInstance in the original source (GM8Emulator/InstanceList.cpp):
// alarm slots are not part of this struct (the alarm registry is an
// explicitly owned, separately threaded component - see internal/alarm
// and spec.md §9's "global mutable state" note).
type Instance struct {
	ID          int32
	ObjectIndex int32
	Exists      bool
	Persistent  bool
	Solid       bool
	Visible     bool
	Depth       int32

	X, Y                 float64
	XPrevious, YPrevious float64
	XStart, YStart       float64

	HSpeed, VSpeed, Speed float64
	Direction             float64
	GravityDirection      float64
	Gravity               float64

	ImageIndex  float64
	ImageSpeed  float64
	ImageXScale float64
	ImageYScale float64
	ImageAngle  float64
	ImageAlpha  float64
	ImageBlend  uint32

	SpriteIndex int32
	MaskIndex   int32

	// Bbox* and BboxStale cache the collision engine's bounding box
	// (internal/collision's RefreshBbox); BboxStale starts true so the
	// first collision query always recomputes it.
	BboxLeft, BboxTop, BboxRight, BboxBottom int32
	BboxStale                                bool

	PathIndex            int32
	PathPosition         float64
	PathPositionPrevious float64
	PathOrientation      float64
	PathEndAction        int32
	PathSpeed            float64
	PathScale            float64

	TimelineIndex    int32
	TimelineRunning  bool
	TimelineSpeed    float64
	TimelinePosition float64
	TimelineLoop     bool

	// Fields holds per-instance dynamic variables (SET_FIELD/SET_ARRAY
	// targets), keyed by the field id the compiler interned in its field
	// pool. A plain (non-array) field is stored at index 0, matching the
	// source's "every variable is array slot 0" convention.
	Fields map[uint32][]float64
}

// ObjectDefaults carries the subset of an object definition's fields that
// _InitInstance copies into a freshly created instance.
type ObjectDefaults struct {
	Solid       bool
	Visible     bool
	Depth       int32
	Persistent  bool
	SpriteIndex int32
}

func newInstance(id, objectIndex int32, x, y float64, def ObjectDefaults) *Instance {
	return &Instance{
		ID:          id,
		ObjectIndex: objectIndex,
		Exists:      true,
		Persistent:  def.Persistent,
		Solid:       def.Solid,
		Visible:     def.Visible,
		Depth:       def.Depth,

		X: x, Y: y,
		XPrevious: x, YPrevious: y,
		XStart: x, YStart: y,

		GravityDirection: 270,

		ImageSpeed:  1,
		ImageXScale: 1,
		ImageYScale: 1,
		ImageAlpha:  1,
		ImageBlend:  0xFFFFFF,

		SpriteIndex: def.SpriteIndex,
		MaskIndex:   -1,
		BboxStale:   true,

		PathIndex: -1,
		PathScale: 1,

		TimelineIndex: -1,
		TimelineSpeed: 1,

		Fields: make(map[uint32][]float64),
	}
}
