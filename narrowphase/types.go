// Package narrowphase implements the per-pair convex collision tests
// (spec.md §4.D): sphere-sphere, sphere-plane, sphere-hull, hull-hull SAT
// (face queries, Gauss-map edge queries, Sutherland-Hodgman clipping), and
// hull-plane, producing up to four-point contact manifolds for the solver.
// It is grounded on the teacher's axis-based separating-plane test
// (collision/geometry.go's BoxVsBox/separatingPlaneTest) generalized from
// axis-aligned boxes to arbitrary convex hulls, per the half-edge mesh and
// SAT algorithm spec.md §4.D names.
package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// segment is a finite line segment in world space, used for edge-edge and
// edge-contact queries.
type segment struct {
	P1, P2 r3.Vector
}

// faceQuery is the result of testing every face-normal axis of one hull
// against the other, per spec.md's face-query contract: the largest
// separation found and which face achieved it.
type faceQuery struct {
	separation float64
	faceIdx    int32
}

// edgeQuery is the result of testing every valid Minkowski-face edge pair
// between two hulls. hasAxis is explicit: the corrected port's fix for the
// source's reliance on an uninitialized-looking sentinel separation -- a
// pair of hulls with no valid Minkowski-face edge pair at all (e.g. either
// hull degenerates to very few edges) must never be silently treated as a
// valid contact axis.
type edgeQuery struct {
	separation         float64
	normal             r3.Vector
	edgeIdxA, edgeIdxB int32
	hasAxis            bool
}

// Manifold is the narrow-phase's output per spec.md §3: up to four contact
// points plus per-point penetration depth, a world-space normal, and which
// side of the pair the normal is anchored to.
type Manifold struct {
	ContactPoints     [4]r3.Vector
	PenetrationDepths [4]float64
	NumContactPoints  int
	Normal            r3.Vector
	AIsReference      bool
}

func getDistanceFromPlane(plane geom.Plane, p r3.Vector) float64 {
	return plane.SignedDistance(p)
}
