package raytrace

import (
	"sort"

	"github.com/golang/geo/r3"
)

// blasLeafThreshold is the triangle count at or below which buildBLAS stops
// splitting, mirroring the teacher's buildBVH leaf cutoff (three triangles
// stays a single leaf in spatialmath/bvh_test.go's TestBuildBVH; splitting
// begins at ten).
const blasLeafThreshold = 4

// blasNode is one node of the bottom-level acceleration structure: a binary
// tree over an instance's triangle mesh, split at each level along the
// longest axis of the node's vertex AABB (triangles sorted by centroid on
// that axis and halved), as the teacher's
// buildBVH does for collision proximity queries -- here walked for ray
// intersection instead.
type blasNode struct {
	min, max    r3.Vector
	left, right *blasNode
	triangles   []*Triangle
}

// computeTrianglesAABB returns the tight AABB enclosing every vertex of
// every triangle in tris.
func computeTrianglesAABB(tris []*Triangle) (r3.Vector, r3.Vector) {
	min := tris[0].V0
	max := tris[0].V0
	for _, t := range tris {
		for _, v := range [3]r3.Vector{t.V0, t.V1, t.V2} {
			min = componentMin(min, v)
			max = componentMax(max, v)
		}
	}
	return min, max
}

func longestAxisVec(ext r3.Vector) int {
	axis := 0
	best := ext.X
	if ext.Y > best {
		axis, best = 1, ext.Y
	}
	if ext.Z > best {
		axis = 2
	}
	return axis
}

func axisOf(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// buildBLAS constructs a bottom-level BVH over tris. Returns nil for an
// empty triangle list (an instance with no renderable geometry).
func buildBLAS(tris []*Triangle) *blasNode {
	if len(tris) == 0 {
		return nil
	}

	min, max := computeTrianglesAABB(tris)
	if len(tris) <= blasLeafThreshold {
		return &blasNode{min: min, max: max, triangles: tris}
	}

	axis := longestAxisVec(max.Sub(min))
	sorted := make([]*Triangle, len(tris))
	copy(sorted, tris)
	sort.Slice(sorted, func(i, j int) bool {
		return axisOf(sorted[i].Centroid(), axis) < axisOf(sorted[j].Centroid(), axis)
	})

	mid := len(sorted) / 2
	return &blasNode{
		min:   min,
		max:   max,
		left:  buildBLAS(sorted[:mid]),
		right: buildBLAS(sorted[mid:]),
	}
}
