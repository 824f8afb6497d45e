package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// buildConvexMesh assembles a closed half-edge mesh from a list of faces,
// each a CCW (viewed from outside) loop of vertex indices with an explicit
// outward normal, generalizing geom's tetrahedron test fixture to
// variable-length faces.
func buildConvexMesh(verts []r3.Vector, faces [][]int32, normals []r3.Vector) *geom.HalfEdgeMesh {
	var halfEdges []geom.HalfEdge
	type edgeKey struct{ a, b int32 }
	twinOf := map[edgeKey]int32{}
	faceEdgeIdx := make([]int32, len(faces))

	for f, loop := range faces {
		base := int32(len(halfEdges))
		faceEdgeIdx[f] = base
		n := len(loop)
		for i := 0; i < n; i++ {
			root := loop[i]
			next := base + int32((i+1)%n)
			halfEdges = append(halfEdges, geom.HalfEdge{RootVertex: root, Next: next, Polygon: int32(f)})
		}
		for i := 0; i < n; i++ {
			a, b := loop[i], loop[(i+1)%n]
			key := edgeKey{b, a}
			if twinIdx, ok := twinOf[key]; ok {
				he := base + int32(i)
				halfEdges[he].Twin = twinIdx
				halfEdges[twinIdx].Twin = he
			} else {
				twinOf[edgeKey{a, b}] = base + int32(i)
			}
		}
	}

	var edgeIndices []int32
	seen := map[[2]int32]bool{}
	for i, he := range halfEdges {
		a, b := he.RootVertex, halfEdges[he.Twin].RootVertex
		if a > b {
			a, b = b, a
		}
		key := [2]int32{a, b}
		if !seen[key] {
			seen[key] = true
			edgeIndices = append(edgeIndices, int32(i))
		}
	}

	facePlanes := make([]geom.Plane, len(faces))
	for f, loop := range faces {
		facePlanes[f] = geom.NewPlane(normals[f], verts[loop[0]])
	}

	return geom.NewHalfEdgeMesh(verts, facePlanes, halfEdges, edgeIndices, faceEdgeIdx)
}

// boxMesh builds an axis-aligned box half-edge mesh centered at the origin
// with the given half-extent.
func boxMesh(h float64) *geom.HalfEdgeMesh {
	verts := []r3.Vector{
		{X: -h, Y: -h, Z: -h}, // 0
		{X: h, Y: -h, Z: -h},  // 1
		{X: h, Y: h, Z: -h},   // 2
		{X: -h, Y: h, Z: -h},  // 3
		{X: -h, Y: -h, Z: h},  // 4
		{X: h, Y: -h, Z: h},   // 5
		{X: h, Y: h, Z: h},    // 6
		{X: -h, Y: h, Z: h},   // 7
	}
	faces := [][]int32{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
	}
	normals := []r3.Vector{
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	return buildConvexMesh(verts, faces, normals)
}
