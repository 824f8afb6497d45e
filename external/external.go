// Package external declares the Go interfaces the collision core consumes
// from and produces to its surrounding system: the ECS runtime, the object
// table, and the constraint solver. Per spec.md §1 these are external
// collaborators -- this package only states their expected contracts.
package external

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/objmgr"
)

// EntityLoc is a stable index into a per-world entity array, assigned at
// registration. It is the "opaque identifier into ECS storage" spec.md §3
// calls Entity.
type EntityLoc int32

// ECSView is the read-only per-entity surface the core consumes each step.
// The core never writes entity state back -- "the solver writes back" per
// spec.md §6.
type ECSView interface {
	Position(e EntityLoc) r3.Vector
	Rotation(e EntityLoc) geom.Quat
	Scale(e EntityLoc) geom.Diag3x3
	ObjectID(e EntityLoc) objmgr.ObjectID
	ResponseType(e EntityLoc) objmgr.ResponseType
	// NumEntities returns the number of entities currently registered for
	// this world (the exclusive upper bound on valid EntityLoc values).
	NumEntities() int
}

// ObjectTable is the object data table's consumed surface: an immutable
// handle yielding per-ObjectID primitives, AABBs, and mass/friction
// metadata. *objmgr.Manager implements this directly.
type ObjectTable interface {
	Object(id objmgr.ObjectID) *objmgr.Record
}

// SolverSurface is the produced half of the contract: a ContactConstraint
// stream with an atomic insertion counter and a compile-time cap. Declared
// here as an interface so narrowphase never imports a concrete solver
// package -- the solver is an external collaborator per spec.md §1.
type SolverSurface interface {
	// PushContact attempts to insert a constraint; the concrete
	// implementation enforces its own maxContacts cap and reports overflow
	// via its own counter, never a returned error (spec.md §7: overflow is
	// fatal/assertion-based, not a recoverable error from this call).
	PushContact(c ContactConstraint)
}

// ContactConstraint is the solver-facing record spec.md §3 names: a (ref,
// alt) entity pair, up to four Vec4 points packing position + depth, a
// count, and the world-space normal.
type ContactConstraint struct {
	Ref, Alt     EntityLoc
	Points       [4]r3.Vector // position, world space
	Depths       [4]float64
	Count        int
	Normal       r3.Vector
	AIsReference bool
}

// CollisionEventSink is the optional per-pair event surface spec.md §6
// calls "the core needs makeTemporary<CollisionEventTemporary> to emit
// optional per-pair events." A nil sink means events are not emitted; the
// narrow-phase never allocates for this unless a sink is configured.
type CollisionEventSink interface {
	EmitEvent(a, b EntityLoc)
}

// TypeRegistry is the ECS runtime's component-type registry, consumed by
// registerTypes per spec.md §6. The core only needs to declare that its
// entities carry the component types ECSView reads (Position, Rotation,
// Scale, ObjectID, ResponseType) -- the registry itself, and how it stores
// them, belongs to the ECS runtime, an external collaborator per spec.md §1.
type TypeRegistry interface {
	RegisterComponentType(name string, sizeBytes int)
}

// CvxSolver is the optional convex-solver collaborator init's
// optionalCvxSolver parameter names: a narrow-phase caller that wants
// pre-clipped support points for a specific hull pair rather than this
// package's own SAT, e.g. an accelerated GJK/EPA path. physcore.Init stores
// it but nothing consumes it: narrowphase always runs its own SAT dispatch,
// whether or not a CvxSolver is given.
type CvxSolver interface {
	Support(objectID objmgr.ObjectID, direction r3.Vector) r3.Vector
}
