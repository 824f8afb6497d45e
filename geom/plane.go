package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Plane is an infinite plane, normal·p = D for every point p on the plane.
type Plane struct {
	Normal r3.Vector
	D      float64
}

// NewPlane constructs a plane from a unit normal and a point known to lie on it.
func NewPlane(normal, point r3.Vector) Plane {
	return Plane{Normal: normal, D: normal.Dot(point)}
}

// SignedDistance returns normal·p - D: positive in front of the plane
// (the side the normal points to), negative behind.
func (p Plane) SignedDistance(pt r3.Vector) float64 {
	return p.Normal.Dot(pt) - p.D
}

// AreParallel reports whether unit vectors a and b are parallel (or
// anti-parallel) within spec.md's fixed tolerance: ||a·b| - 1| < 1e-4.
func AreParallel(a, b r3.Vector) bool {
	return math.Abs(math.Abs(a.Dot(b))-1) < ParallelEpsilon
}

// PlaneIntersection returns the point on segment p1->p2 where plane's
// signed distance is zero. The caller must guarantee the segment is not
// parallel to the plane; near-degenerate denominators are clamped to
// DegenerateEpsilon rather than dividing by (near-)zero, per spec.md §4.A.
func PlaneIntersection(plane Plane, p1, p2 r3.Vector) r3.Vector {
	d1 := plane.SignedDistance(p1)
	d2 := plane.SignedDistance(p2)
	denom := d1 - d2
	if math.Abs(denom) < DegenerateEpsilon {
		denom = math.Copysign(DegenerateEpsilon, denom)
	}
	t := d1 / denom
	return p1.Add(p2.Sub(p1).Mul(t))
}
