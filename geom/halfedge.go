package geom

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/internal/xerrors"
)

// HalfEdge is one directed half of an undirected mesh edge.
type HalfEdge struct {
	RootVertex int32
	Next       int32
	Twin       int32
	Polygon    int32
}

// HalfEdgeMesh is an immutable convex-hull representation: vertices, face
// planes, half-edges, the canonical (one-per-undirected-edge) edge index
// list, and a face->first-half-edge index used to walk each face's loop.
// Built once at init per spec.md's Lifecycles note; never mutated.
type HalfEdgeMesh struct {
	Vertices        []r3.Vector
	FacePlanes      []Plane
	HalfEdges       []HalfEdge
	EdgeIndices     []int32 // one half-edge index per undirected edge
	FaceEdgeIndices []int32 // face -> first half-edge index of its loop
}

// NewHalfEdgeMesh constructs a HalfEdgeMesh from its component arrays. It
// does not validate invariants by default; call CheckInvariants in tests or
// at asset-load time (the "debug-only invariant check" spec.md §9 calls for).
func NewHalfEdgeMesh(vertices []r3.Vector, facePlanes []Plane, halfEdges []HalfEdge, edgeIndices, faceEdgeIndices []int32) *HalfEdgeMesh {
	return &HalfEdgeMesh{
		Vertices:        vertices,
		FacePlanes:      facePlanes,
		HalfEdges:       halfEdges,
		EdgeIndices:     edgeIndices,
		FaceEdgeIndices: faceEdgeIndices,
	}
}

// CheckInvariants verifies: every half-edge's twin's twin is itself;
// following .Next from any half-edge returns to it after traversing exactly
// one face; the .Polygon index is consistent for every half-edge of a face.
// It returns the first violated invariant as an *xerrors.InvariantError, or
// nil if the mesh is well-formed.
func (m *HalfEdgeMesh) CheckInvariants() error {
	for i, he := range m.HalfEdges {
		twin := m.HalfEdges[he.Twin]
		if twin.Twin != int32(i) {
			return xerrors.NewInvariantError("half-edge twin.twin != self")
		}
	}
	for start := range m.HalfEdges {
		cur := int32(start)
		poly := m.HalfEdges[start].Polygon
		steps := 0
		for {
			he := m.HalfEdges[cur]
			if he.Polygon != poly {
				return xerrors.NewInvariantError("half-edge polygon inconsistent within face loop")
			}
			cur = he.Next
			steps++
			if cur == int32(start) {
				break
			}
			if steps > len(m.HalfEdges) {
				return xerrors.NewInvariantError("half-edge .next loop never returns to start")
			}
		}
	}
	return nil
}

// FaceVertices walks the half-edge loop starting at FaceEdgeIndices[face]
// and returns the face's vertex positions in winding order. This is the
// exact walk narrowphase.cpp's incident/reference-face collection uses
// (follow .next from faceEdgeIndices[face] until back at the start), and
// preserving that walk order matters: it is the winding the clip-plane
// construction in the narrow-phase depends on.
func (m *HalfEdgeMesh) FaceVertices(face int) []r3.Vector {
	start := m.FaceEdgeIndices[face]
	cur := start
	var verts []r3.Vector
	for {
		he := m.HalfEdges[cur]
		verts = append(verts, m.Vertices[he.RootVertex])
		cur = he.Next
		if cur == start {
			break
		}
	}
	return verts
}

// EdgeEndpoints returns the mesh-local endpoints of the undirected edge
// represented by half-edge index heIdx: its root vertex and its twin's
// root vertex.
func (m *HalfEdgeMesh) EdgeEndpoints(heIdx int32) (r3.Vector, r3.Vector) {
	he := m.HalfEdges[heIdx]
	twin := m.HalfEdges[he.Twin]
	return m.Vertices[he.RootVertex], m.Vertices[twin.RootVertex]
}

// SupportPoint returns the hull vertex with the greatest projection along
// dir -- the standard SAT support-mapping query used for both face and edge
// distance tests.
func (m *HalfEdgeMesh) SupportPoint(dir r3.Vector) r3.Vector {
	best := m.Vertices[0]
	bestDot := best.Dot(dir)
	for _, v := range m.Vertices[1:] {
		if d := v.Dot(dir); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}
