package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/broadphase"
	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/internal/ringbuf"
	"github.com/shacklettbp/miwe/internal/xerrors"
	"github.com/shacklettbp/miwe/logging"
	"github.com/shacklettbp/miwe/objmgr"
)

var basePlaneNormal = r3.Vector{X: 0, Y: 0, Z: 1}

// World drives the per-step narrow-phase: it consumes the broad-phase's
// candidate-pair stream, re-checks each pair's world AABBs, dispatches every
// primitive-pair cross product to the matching SAT test by PrimitiveKind
// ordering, and pushes resulting contacts to the solver.
type World struct {
	objects external.ObjectTable
	solver  external.SolverSurface
	sink    external.CollisionEventSink // nil means no event emission
	logger  logging.Logger
}

// NewWorld constructs a narrow-phase World. sink may be nil.
func NewWorld(objects external.ObjectTable, solver external.SolverSurface, sink external.CollisionEventSink, logger logging.Logger) *World {
	return &World{objects: objects, solver: solver, sink: sink, logger: logger}
}

// Step processes every candidate pair produced by the broad-phase this
// step, sequentially. Callers that want the parallel-for execution spec.md
// §4.F describes ("parallel-for over candidates") should instead drive
// ProcessCandidate themselves over a worker pool -- see package sched's
// SetupNarrowphase, which is the task-graph node that does this.
func (w *World) Step(ecs external.ECSView, candidates *ringbuf.Buffer[broadphase.CandidateCollision]) {
	for _, c := range candidates.Items() {
		w.ProcessCandidate(ecs, c)
	}
}

// ProcessCandidate resolves and dispatches a single candidate pair. It is
// safe to call concurrently across distinct candidates: each call only
// reads ECS/object-table state and writes to the solver surface, which is
// responsible for its own concurrent-insertion safety (spec.md §5's
// "Contact buffer insertion order is nondeterministic -- solver must be
// insensitive to it").
func (w *World) ProcessCandidate(ecs external.ECSView, c broadphase.CandidateCollision) {
	w.processPair(ecs, c.A, c.B)
}

func (w *World) processPair(ecs external.ECSView, aLoc, bLoc external.EntityLoc) {
	objA := w.objects.Object(ecs.ObjectID(aLoc))
	objB := w.objects.Object(ecs.ObjectID(bLoc))

	posA, rotA, scaleA := ecs.Position(aLoc), ecs.Rotation(aLoc), ecs.Scale(aLoc)
	posB, rotB, scaleB := ecs.Position(bLoc), ecs.Rotation(bLoc), ecs.Scale(bLoc)

	worldA := objA.AABB.ApplyTRS(posA, rotA, scaleA)
	worldB := objB.AABB.ApplyTRS(posB, rotB, scaleB)
	if !worldA.Overlaps(worldB) {
		return
	}

	any := false
	for _, primA := range objA.Primitives {
		for _, primB := range objB.Primitives {
			if w.dispatchPrimitivePair(aLoc, posA, rotA, scaleA, primA, bLoc, posB, rotB, scaleB, primB) {
				any = true
			}
		}
	}

	if any && w.sink != nil {
		w.sink.EmitEvent(aLoc, bLoc)
	}
}

func (w *World) dispatchPrimitivePair(
	aLoc external.EntityLoc, posA r3.Vector, rotA geom.Quat, scaleA geom.Diag3x3, primA objmgr.Primitive,
	bLoc external.EntityLoc, posB r3.Vector, rotB geom.Quat, scaleB geom.Diag3x3, primB objmgr.Primitive,
) bool {
	if primA.Kind > primB.Kind {
		aLoc, bLoc = bLoc, aLoc
		posA, posB = posB, posA
		rotA, rotB = rotB, rotA
		scaleA, scaleB = scaleB, scaleA
		primA, primB = primB, primA
	}

	var manifold Manifold
	ok := false

	switch {
	case primA.Kind == objmgr.KindSphere && primB.Kind == objmgr.KindSphere:
		manifold, ok = sphereSphere(posA, primA.SphereRadius, posB, primB.SphereRadius)
	case primA.Kind == objmgr.KindSphere && primB.Kind == objmgr.KindHull:
		hullW := makeHullWorld(primB.Hull, posB, rotB, scaleB)
		manifold, ok = sphereHull(posA, primA.SphereRadius, hullW)
	case primA.Kind == objmgr.KindSphere && primB.Kind == objmgr.KindPlane:
		manifold, ok = spherePlane(posA, primA.SphereRadius, posB, rotB)
	case primA.Kind == objmgr.KindHull && primB.Kind == objmgr.KindHull:
		hullA := makeHullWorld(primA.Hull, posA, rotA, scaleA)
		hullB := makeHullWorld(primB.Hull, posB, rotB, scaleB)
		manifold = doSAT(hullA, hullB)
		ok = manifold.NumContactPoints > 0
	case primA.Kind == objmgr.KindHull && primB.Kind == objmgr.KindPlane:
		hullA := makeHullWorld(primA.Hull, posA, rotA, scaleA)
		planeNormal := rotB.RotateVec(basePlaneNormal)
		plane := geom.Plane{Normal: planeNormal, D: planeNormal.Dot(posB)}
		manifold = doSATPlane(plane, hullA)
		ok = manifold.NumContactPoints > 0
	case primA.Kind == objmgr.KindPlane && primB.Kind == objmgr.KindPlane:
		xerrors.MustNotViolate(xerrors.NewInvariantError("Plane-Plane candidate pair reached narrowphase dispatch"))
	}

	if !ok || manifold.NumContactPoints == 0 {
		return false
	}

	w.pushManifold(aLoc, bLoc, manifold)
	return true
}

func (w *World) pushManifold(aLoc, bLoc external.EntityLoc, m Manifold) {
	ref, alt := aLoc, bLoc
	if !m.AIsReference {
		ref, alt = bLoc, aLoc
	}

	w.solver.PushContact(external.ContactConstraint{
		Ref:          ref,
		Alt:          alt,
		Points:       m.ContactPoints,
		Depths:       m.PenetrationDepths,
		Count:        m.NumContactPoints,
		Normal:       m.Normal,
		AIsReference: true,
	})
}

func sphereSphere(posA r3.Vector, radiusA float64, posB r3.Vector, radiusB float64) (Manifold, bool) {
	toB := posB.Sub(posA)
	dist := toB.Norm()
	if dist <= 0 || dist >= radiusA+radiusB {
		return Manifold{}, false
	}

	normal := toB.Mul(1 / dist)
	mid := toB.Mul(0.5)

	var m Manifold
	m.NumContactPoints = 1
	m.ContactPoints[0] = posA.Add(mid)
	m.PenetrationDepths[0] = radiusA + radiusB - dist
	m.Normal = normal
	m.AIsReference = true
	return m, true
}

func spherePlane(posSphere r3.Vector, radius float64, planePos r3.Vector, planeRot geom.Quat) (Manifold, bool) {
	planeNormal := planeRot.RotateVec(basePlaneNormal)
	d := planeNormal.Dot(planePos)
	t := planeNormal.Dot(posSphere) - d
	penetration := radius - t
	if penetration <= 0 {
		return Manifold{}, false
	}

	var m Manifold
	m.NumContactPoints = 1
	m.ContactPoints[0] = posSphere.Sub(planeNormal.Mul(t))
	m.PenetrationDepths[0] = penetration
	m.Normal = planeNormal
	m.AIsReference = false
	return m, true
}

// sphereHull is a supplemented feature the source left as an unimplemented
// assert(false) stub: it tests the sphere center against every face
// half-space of the hull (valid for a convex hull: the center is outside
// the hull iff it violates at least one face plane), which is the same
// degenerate fast path the teacher's capsule/box SAT helpers use when one
// shape collapses to a point.
func sphereHull(posSphere r3.Vector, radius float64, hull hullWorld) (Manifold, bool) {
	bestSep := -1e18
	bestIdx := 0
	for i, p := range hull.planes {
		d := getDistanceFromPlane(p, posSphere)
		if d > bestSep {
			bestSep = d
			bestIdx = i
		}
	}

	if bestSep > radius {
		return Manifold{}, false
	}

	normal := hull.planes[bestIdx].Normal
	var m Manifold
	m.NumContactPoints = 1
	m.ContactPoints[0] = posSphere.Sub(normal.Mul(bestSep))
	m.PenetrationDepths[0] = radius - bestSep
	m.Normal = normal
	m.AIsReference = false
	return m, true
}
