package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// hullWorld is a convex hull's topology (shared, immutable) paired with its
// current world-space vertex and face-plane arrays, rebuilt fresh for every
// candidate pair -- mirroring the source's per-call makeHullState, minus the
// manual scratch-buffer management a garbage-collected port doesn't need.
type hullWorld struct {
	mesh     *geom.HalfEdgeMesh
	vertices []r3.Vector
	planes   []geom.Plane
	center   r3.Vector
}

func makeHullWorld(mesh *geom.HalfEdgeMesh, pos r3.Vector, rot geom.Quat, scale geom.Diag3x3) hullWorld {
	verts := make([]r3.Vector, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = rot.RotateVec(scale.MulVec(v)).Add(pos)
	}

	invScale := scale.Inverse()
	planes := make([]geom.Plane, len(mesh.FacePlanes))
	for i, p := range mesh.FacePlanes {
		planeOrigin := rot.RotateVec(scale.MulVec(p.Normal.Mul(p.D))).Add(pos)
		dstNormal := rot.RotateVec(invScale.MulVec(p.Normal)).Normalize()
		planes[i] = geom.Plane{Normal: dstNormal, D: dstNormal.Dot(planeOrigin)}
	}

	return hullWorld{mesh: mesh, vertices: verts, planes: planes, center: pos}
}

// supportPoint returns the world-space vertex with greatest projection along
// dir, the standard SAT support mapping.
func (h hullWorld) supportPoint(dir r3.Vector) r3.Vector {
	best := h.vertices[0]
	bestDot := best.Dot(dir)
	for _, v := range h.vertices[1:] {
		if d := v.Dot(dir); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

func (h hullWorld) numFaces() int { return len(h.planes) }
func (h hullWorld) numEdges() int { return len(h.mesh.EdgeIndices) }

// edgeSegment returns the world-space segment of half-edge heIdx, following
// .Next for the second endpoint exactly as the source's getEdgeSegment does.
func (h hullWorld) edgeSegment(heIdx int32) segment {
	he := h.mesh.HalfEdges[heIdx]
	nextHe := h.mesh.HalfEdges[he.Next]
	return segment{P1: h.vertices[he.RootVertex], P2: h.vertices[nextHe.RootVertex]}
}

// edgeNormals returns the two face normals adjacent to half-edge heIdx: its
// own face, and its twin's face.
func (h hullWorld) edgeNormals(heIdx int32) (r3.Vector, r3.Vector) {
	he := h.mesh.HalfEdges[heIdx]
	twin := h.mesh.HalfEdges[he.Twin]
	return h.planes[he.Polygon].Normal, h.planes[twin.Polygon].Normal
}

// faceLoopVertices walks the half-edge loop of face starting at
// mesh.FaceEdgeIndices[face], returning world-space vertex positions in
// winding order -- the same walk geom.HalfEdgeMesh.FaceVertices performs,
// reimplemented here against the transformed vertex array.
func (h hullWorld) faceLoopVertices(face int32) []r3.Vector {
	start := h.mesh.FaceEdgeIndices[face]
	cur := start
	var verts []r3.Vector
	for {
		he := h.mesh.HalfEdges[cur]
		verts = append(verts, h.vertices[he.RootVertex])
		cur = he.Next
		if cur == start {
			break
		}
	}
	return verts
}
