package raytrace

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/qbvh"
)

// HitInfo carries a ray hit's surface data in whatever space it was
// computed -- local for BLAS results, world once TraceRay has transformed
// it back, per spec.md §4.E's `HitInfo{tHit, normal, uv, bvh}`.
type HitInfo struct {
	T           float64
	Normal      r3.Vector
	U, V        float64
	InstanceIdx int32
	TriIdx      int32
}

// rayTriangleIntersect is the standard Möller-Trumbore test, returning the
// barycentric (u,v) coordinates alongside the hit distance.
func rayTriangleIntersect(origin, dir r3.Vector, tri *Triangle) (t, u, v float64, hit bool) {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < geom.NearZero {
		return 0, 0, 0, false
	}

	f := 1 / a
	s := origin.Sub(tri.V0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t <= geom.NearZero {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

func triangleUV(tri *Triangle, u, v float64) (float64, float64) {
	w := 1 - u - v
	return w*tri.UV0[0] + u*tri.UV1[0] + v*tri.UV2[0],
		w*tri.UV0[1] + u*tri.UV1[1] + v*tri.UV2[1]
}

// traverseBLAS recurses the bottom-level BVH, keeping the closest hit
// within [0, tMax]. Recursive rather than explicit-stack: the BLAS is
// rebuilt once per mesh, not once per step, and the teacher's own
// bvhCollidesWithBVH/bvhDistanceFromBVH walk their binary BVH recursively,
// so this mirrors that shape rather than qbvh's explicit-stack style (which
// exists for the TLAS's per-step rebuild/refit traversal cost).
func traverseBLAS(node *blasNode, origin, dir r3.Vector, tMax float64) (HitInfo, bool) {
	if node == nil {
		return HitInfo{}, false
	}

	if _, _, hit := qbvh.RaySlabTest(origin, dir, tMax, geom.AABB{Min: node.min, Max: node.max}); !hit {
		return HitInfo{}, false
	}

	if node.triangles != nil {
		best := HitInfo{}
		found := false
		closest := tMax
		for i, tri := range node.triangles {
			if t, u, v, ok := rayTriangleIntersect(origin, dir, tri); ok && t < closest {
				closest = t
				uu, vv := triangleUV(tri, u, v)
				best = HitInfo{T: t, Normal: tri.Normal(), U: uu, V: vv, TriIdx: int32(i)}
				found = true
			}
		}
		return best, found
	}

	leftHit, leftOK := traverseBLAS(node.left, origin, dir, tMax)
	if leftOK {
		tMax = leftHit.T
	}
	rightHit, rightOK := traverseBLAS(node.right, origin, dir, tMax)

	switch {
	case leftOK && rightOK:
		if leftHit.T < rightHit.T {
			return leftHit, true
		}
		return rightHit, true
	case leftOK:
		return leftHit, true
	case rightOK:
		return rightHit, true
	default:
		return HitInfo{}, false
	}
}
