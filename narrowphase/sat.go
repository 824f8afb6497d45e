package narrowphase

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

func queryFaceDirectionsPlane(plane geom.Plane, h hullWorld) faceQuery {
	support := h.supportPoint(plane.Normal.Mul(-1))
	return faceQuery{separation: getDistanceFromPlane(plane, support), faceIdx: 0}
}

// queryFaceDirections tests every face-normal axis of a against b, returning
// the face with the largest separation (the first such face on ties).
func queryFaceDirections(a, b hullWorld) faceQuery {
	best := faceQuery{separation: -math.MaxFloat64}
	for i, plane := range a.planes {
		support := b.supportPoint(plane.Normal.Mul(-1))
		d := getDistanceFromPlane(plane, support)
		if d > best.separation {
			best = faceQuery{separation: d, faceIdx: int32(i)}
		}
	}
	return best
}

// isMinkowskiFace reports whether the arcs (a,b) and (c,d) on the Gauss map
// cross, i.e. whether edges with these face-normal pairs build a face of the
// Minkowski difference (per Ericson's Real-Time Collision Detection, §4.4.2).
func isMinkowskiFace(a, b, c, d r3.Vector) bool {
	bxa := b.Cross(a)
	dxc := d.Cross(c)

	cba := c.Dot(bxa)
	dba := d.Dot(bxa)
	adc := a.Dot(dxc)
	bdc := b.Dot(dxc)

	return cba*dba < 0 && adc*bdc < 0 && cba*bdc > 0
}

func buildsMinkowskiFace(a, b hullWorld, heA, heB int32) bool {
	aN1, aN2 := a.edgeNormals(heA)
	bN1, bN2 := b.edgeNormals(heB)
	return isMinkowskiFace(aN1, aN2, bN1.Mul(-1), bN2.Mul(-1))
}

// edgeDistance returns the candidate separating axis and separation for one
// edge pair, oriented to point away from hull a's center, or ok=false (with
// a zero normal and zero separation) when the two edges are parallel.
func edgeDistance(a, b hullWorld, heA, heB int32) (normal r3.Vector, separation float64, ok bool) {
	segA := a.edgeSegment(heA)
	segB := b.edgeSegment(heB)

	dirA := segA.P2.Sub(segA.P1)
	dirB := segB.P2.Sub(segB.P1)

	if geom.AreParallel(dirA.Normalize(), dirB.Normalize()) {
		return r3.Vector{}, 0, false
	}

	n := dirA.Cross(dirB).Normalize()
	if n.Dot(segA.P1.Sub(a.center)) < 0 {
		n = n.Mul(-1)
	}

	return n, n.Dot(segB.P1.Sub(segA.P1)), true
}

// queryEdgeDirections tests every pair of edges that builds a Minkowski
// face, returning the most separating valid axis. hasAxis is false when no
// edge pair in the entire cross product builds a Minkowski face with
// non-parallel edges -- the corrected port's explicit guard against the
// source's uninitialized-axis bug (see edgeQuery).
func queryEdgeDirections(a, b hullWorld) edgeQuery {
	best := edgeQuery{separation: -math.MaxFloat64}

	for _, heAIdx := range a.mesh.EdgeIndices {
		for _, heBIdx := range b.mesh.EdgeIndices {
			if !buildsMinkowskiFace(a, b, heAIdx, heBIdx) {
				continue
			}
			normal, sep, ok := edgeDistance(a, b, heAIdx, heBIdx)
			if !ok {
				continue
			}
			if !best.hasAxis || sep > best.separation {
				best = edgeQuery{
					separation: sep,
					normal:     normal,
					edgeIdxA:   heAIdx,
					edgeIdxB:   heBIdx,
					hasAxis:    true,
				}
			}
		}
	}

	return best
}

// findIncidentFace returns the face of h whose normal is most anti-parallel
// to refNormal -- the face "facing into" the reference hull.
func findIncidentFace(h hullWorld, refNormal r3.Vector) int32 {
	minDot := math.MaxFloat64
	minimizing := int32(-1)
	for i, plane := range h.planes {
		d := plane.Normal.Dot(refNormal)
		if d < minDot {
			minDot = d
			minimizing = int32(i)
		}
	}
	return minimizing
}
