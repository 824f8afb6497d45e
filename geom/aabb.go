// Package geom implements the geometry primitives shared by the broad-phase,
// narrow-phase, and raytracer: AABBs, planes, quaternion rotation, diagonal
// scale matrices, and immutable half-edge convex meshes. It is grounded on
// go.viam.com/rdk/spatialmath's use of github.com/golang/geo/r3 for vectors
// and gonum.org/v1/gonum/num/quat for rotation, generalized from that
// package's per-shape methods (box.go, triangle.go) into the free functions
// spec.md §4.A names directly.
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Numerical tolerances fixed by spec.md §4.A.
const (
	NearZero           = 1e-6
	ParallelEpsilon    = 1e-4
	DegenerateEpsilon  = 1e-5
)

// AABB is an axis-aligned bounding box with pMin <= pMax componentwise.
type AABB struct {
	Min r3.Vector
	Max r3.Vector
}

// NewAABB constructs an AABB from two corners, ordering them componentwise
// so the invariant Min <= Max always holds regardless of argument order.
func NewAABB(a, b r3.Vector) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Overlaps reports whether a and b intersect, inclusive of touching faces.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Union returns the smallest AABB enclosing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vector{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// Center returns the AABB's midpoint.
func (a AABB) Center() r3.Vector {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Expand grows the AABB by eps on every side. Used by the broad-phase to
// pad world AABBs before insertion.
func (a AABB) Expand(eps float64) AABB {
	pad := r3.Vector{X: eps, Y: eps, Z: eps}
	return AABB{Min: a.Min.Sub(pad), Max: a.Max.Add(pad)}
}

// corners returns the eight corners of the box in a fixed order.
func (a AABB) corners() [8]r3.Vector {
	return [8]r3.Vector{
		{X: a.Min.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z},
		{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z},
		{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z},
		{X: a.Max.X, Y: a.Max.Y, Z: a.Max.Z},
	}
}

// ApplyTRS returns the AABB of the eight corners of a after being scaled by
// scale, rotated by rot, and translated by pos. Per spec.md §3 this is
// deliberately NOT the minimal enclosing box of the rotated box: it is the
// AABB of the transformed corners, which over-approximates for non-axis
// aligned rotations (the cheaper, conservative choice every broad-phase in
// the corpus makes).
func (a AABB) ApplyTRS(pos r3.Vector, rot Quat, scale Diag3x3) AABB {
	pts := a.corners()
	result := AABB{Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}}
	for _, p := range pts {
		world := rot.RotateVec(scale.MulVec(p)).Add(pos)
		result.Min = r3.Vector{X: math.Min(result.Min.X, world.X), Y: math.Min(result.Min.Y, world.Y), Z: math.Min(result.Min.Z, world.Z)}
		result.Max = r3.Vector{X: math.Max(result.Max.X, world.X), Y: math.Max(result.Max.Y, world.Y), Z: math.Max(result.Max.Z, world.Z)}
	}
	return result
}

// ContainsPoint reports whether p lies within a, inclusive of the boundary.
func (a AABB) ContainsPoint(p r3.Vector) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Extent returns Max - Min componentwise.
func (a AABB) Extent() r3.Vector {
	return a.Max.Sub(a.Min)
}
