package geom

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

// tetrahedron builds a minimal closed convex half-edge mesh: four vertices,
// four triangular faces, twelve half-edges. Used to exercise
// CheckInvariants and FaceVertices without dragging in a full box builder.
func tetrahedron() *HalfEdgeMesh {
	verts := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	// Each face is a triple of vertex indices, wound consistently outward.
	faces := [4][3]int32{
		{0, 2, 1},
		{0, 1, 3},
		{0, 3, 2},
		{1, 2, 3},
	}

	var halfEdges []HalfEdge
	type edgeKey struct{ a, b int32 }
	twinOf := map[edgeKey]int32{}
	faceEdgeIdx := make([]int32, 4)

	for f, tri := range faces {
		base := int32(len(halfEdges))
		faceEdgeIdx[f] = base
		for i := 0; i < 3; i++ {
			root := tri[i]
			next := base + int32((i+1)%3)
			halfEdges = append(halfEdges, HalfEdge{RootVertex: root, Next: next, Polygon: int32(f)})
		}
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
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

	facePlanes := make([]Plane, 4)
	for f, tri := range faces {
		p0, p1, p2 := verts[tri[0]], verts[tri[1]], verts[tri[2]]
		n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		facePlanes[f] = NewPlane(n, p0)
	}

	return NewHalfEdgeMesh(verts, facePlanes, halfEdges, edgeIndices, faceEdgeIdx)
}

func TestHalfEdgeMeshInvariants(t *testing.T) {
	mesh := tetrahedron()
	test.That(t, mesh.CheckInvariants(), test.ShouldBeNil)
}

func TestHalfEdgeMeshFaceVertices(t *testing.T) {
	mesh := tetrahedron()
	verts := mesh.FaceVertices(0)
	test.That(t, len(verts), test.ShouldEqual, 3)
}

func TestHalfEdgeMeshBrokenTwinInvariant(t *testing.T) {
	mesh := tetrahedron()
	// Corrupt one twin link so twin.twin != self.
	mesh.HalfEdges[0].Twin = mesh.HalfEdges[1].Twin
	test.That(t, mesh.CheckInvariants(), test.ShouldNotBeNil)
}
