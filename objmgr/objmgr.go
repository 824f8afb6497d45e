// Package objmgr implements the process-wide, immutable-after-init object
// table (spec.md §3's ObjectManager): a flat table indexed by ObjectID
// holding each object's collision primitives, their local AABBs, the
// composed whole-object AABB, and mass/friction metadata.
package objmgr

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// ObjectID indexes into the shared object table.
type ObjectID int32

// ResponseType classifies how an entity participates in simulation.
type ResponseType uint8

const (
	Dynamic ResponseType = iota
	Kinematic
	Static
)

// PrimitiveKind discriminates the sum-typed CollisionPrimitive. The numeric
// ordering Sphere < Hull < Plane is load-bearing: the narrow-phase dispatch
// normalizes pairs by this ordering before looking up a handler cell
// (spec.md §4.D).
type PrimitiveKind uint8

const (
	KindSphere PrimitiveKind = iota
	KindHull
	KindPlane
)

// Primitive is the tagged-variant collision shape spec.md §3 describes as
// CollisionPrimitive = Sphere{radius} | Plane{} | Hull{half-edge-mesh}.
// Reimplemented per design note 9 as a single struct carrying only the
// fields relevant to Kind, rather than a C-style union.
type Primitive struct {
	Kind         PrimitiveKind
	SphereRadius float64          // valid iff Kind == KindSphere
	Hull         *geom.HalfEdgeMesh // valid iff Kind == KindHull
	LocalAABB    geom.AABB
}

// NewSpherePrimitive constructs a sphere primitive of the given radius,
// centered at the primitive's local origin.
func NewSpherePrimitive(radius float64) Primitive {
	r := geom.AABB{Min: negVec(radius), Max: posVec(radius)}
	return Primitive{Kind: KindSphere, SphereRadius: radius, LocalAABB: r}
}

// NewPlanePrimitive constructs a plane primitive. Planes are infinite, so
// their local AABB is unbounded; callers that need a finite bound for
// broad-phase purposes should treat static planes specially (spec.md §4.D
// notes Plane participants are always static and skip both-static pairs).
func NewPlanePrimitive() Primitive {
	inf := 1e12
	return Primitive{Kind: KindPlane, LocalAABB: geom.AABB{Min: negVec(inf), Max: posVec(inf)}}
}

// NewHullPrimitive constructs a hull primitive from an immutable half-edge
// mesh, computing its local AABB from the mesh's vertices.
func NewHullPrimitive(hull *geom.HalfEdgeMesh) Primitive {
	if len(hull.Vertices) == 0 {
		return Primitive{Kind: KindHull, Hull: hull}
	}
	box := geom.NewAABB(hull.Vertices[0], hull.Vertices[0])
	for _, v := range hull.Vertices[1:] {
		box = box.Union(geom.NewAABB(v, v))
	}
	return Primitive{Kind: KindHull, Hull: hull, LocalAABB: box}
}

func negVec(r float64) r3.Vector { return r3.Vector{X: -r, Y: -r, Z: -r} }
func posVec(r float64) r3.Vector { return r3.Vector{X: r, Y: r, Z: r} }

// Record is one ObjectID's worth of immutable data: its primitives, the
// composed whole-object AABB, and mass/friction metadata consumed by the
// (external) solver.
type Record struct {
	Primitives []Primitive
	AABB       geom.AABB
	Mass       float64
	Friction   float64
}

// ComposeAABB unions every primitive's local AABB, used by NewRecord when
// the caller doesn't want to compute the whole-object bound itself.
func ComposeAABB(prims []Primitive) geom.AABB {
	if len(prims) == 0 {
		return geom.AABB{}
	}
	box := prims[0].LocalAABB
	for _, p := range prims[1:] {
		box = box.Union(p.LocalAABB)
	}
	return box
}

// NewRecord constructs an object Record, composing the AABB from its
// primitives' local AABBs.
func NewRecord(prims []Primitive, mass, friction float64) Record {
	return Record{Primitives: prims, AABB: ComposeAABB(prims), Mass: mass, Friction: friction}
}

// Manager is the immutable-after-init, process-wide object table.
// It is shared by reference (never copied) across every world, per design
// note 9's "Shared object tables" guidance.
type Manager struct {
	objects []Record
}

// NewManager builds a Manager from a complete, ordered list of object
// records. Once constructed, a Manager is never mutated.
func NewManager(objects []Record) *Manager {
	return &Manager{objects: objects}
}

// Object returns the Record for id. Panics on an out-of-range id, since an
// invalid ObjectID indicates a caller bug, not a runtime condition (spec.md
// §7 category 2).
func (m *Manager) Object(id ObjectID) *Record {
	return &m.objects[id]
}

// Len returns the number of registered objects.
func (m *Manager) Len() int {
	return len(m.objects)
}
