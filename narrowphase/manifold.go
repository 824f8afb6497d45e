package narrowphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// contactCandidate is one clipped, projected contact point awaiting
// four-point reduction.
type contactCandidate struct {
	point r3.Vector
	depth float64
}

// reduceToFourPoints picks the standard four "extreme" points out of a
// larger clipped contact set: the first candidate, the point farthest from it,
// and the points that maximize and minimize the signed area of the triangle
// they form with the first two (Ericson's reference-face contact reduction).
//
// This reimplements the source's buildFaceContactManifold reduction with one
// fix: candidates already chosen are removed from the working set by
// swapping with the last element and shrinking the slice, instead of
// overwriting them in place with a copy of point 0 -- the source's approach
// can re-select point 0 itself as a later "extreme" point whenever every
// remaining candidate happens to score equally against the already-chosen
// points, which silently drops the manifold to duplicate corners.
func reduceToFourPoints(normal r3.Vector, candidates []contactCandidate) []contactCandidate {
	if len(candidates) <= 4 {
		return candidates
	}

	working := make([]contactCandidate, len(candidates))
	copy(working, candidates)

	pop := func(i int) contactCandidate {
		c := working[i]
		last := len(working) - 1
		working[i] = working[last]
		working = working[:last]
		return c
	}

	result := make([]contactCandidate, 0, 4)
	result = append(result, pop(0))

	// Farthest point from the first.
	farIdx, farD2 := -1, 0.0
	for i, c := range working {
		d2 := result[0].point.Sub(c.point).Norm2()
		if d2 > farD2 {
			farD2 = d2
			farIdx = i
		}
	}
	result = append(result, pop(farIdx))

	diff0 := result[1].point.Sub(result[0].point)

	// Point maximizing the signed triangle area with the first two.
	maxIdx, maxArea := -1, 0.0
	for i, c := range working {
		diff1 := c.point.Sub(result[0].point)
		area := normal.Dot(diff0.Cross(diff1))
		if maxIdx == -1 || area > maxArea {
			maxArea = area
			maxIdx = i
		}
	}
	if maxIdx >= 0 {
		result = append(result, pop(maxIdx))
	}

	// Point minimizing (most negative) the same signed area.
	minIdx, minArea := -1, 0.0
	for i, c := range working {
		diff1 := c.point.Sub(result[0].point)
		area := normal.Dot(diff0.Cross(diff1))
		if minIdx == -1 || area < minArea {
			minArea = area
			minIdx = i
		}
	}
	if minIdx >= 0 {
		result = append(result, pop(minIdx))
	}

	return result
}

func buildFaceContactManifold(contactNormal r3.Vector, candidates []contactCandidate, aIsRef bool) Manifold {
	reduced := reduceToFourPoints(contactNormal, candidates)

	var m Manifold
	m.AIsReference = aIsRef
	m.NumContactPoints = len(reduced)
	for i, c := range reduced {
		m.ContactPoints[i] = c.point
		m.PenetrationDepths[i] = c.depth
	}
	m.Normal = contactNormal
	return m
}

// clipIncidentFaceAgainstReference clips the incident hull's face polygon
// against every side plane of the reference face (the reference face's own
// edges extruded along its normal), then keeps only the points that end up
// behind the reference plane, projecting them onto it and recording
// penetration depth.
func clipIncidentFaceAgainstReference(refHull hullWorld, refFaceIdx int32, refPlane geom.Plane, incidentVerts []r3.Vector) []contactCandidate {
	clipped := incidentVerts

	start := refHull.mesh.FaceEdgeIndices[refFaceIdx]
	cur := start
	curHe := refHull.mesh.HalfEdges[cur]
	curPoint := refHull.vertices[curHe.RootVertex]
	for {
		cur = curHe.Next
		curHe = refHull.mesh.HalfEdges[cur]
		nextPoint := refHull.vertices[curHe.RootVertex]

		edge := nextPoint.Sub(curPoint)
		planeNormal := edge.Cross(refPlane.Normal)
		sidePlane := geom.Plane{Normal: planeNormal, D: planeNormal.Dot(curPoint)}

		clipped = clipPolygon(sidePlane, clipped)
		curPoint = nextPoint

		if cur == start {
			break
		}
	}

	var out []contactCandidate
	for _, v := range clipped {
		d := getDistanceFromPlane(refPlane, v)
		if d < 0 {
			out = append(out, contactCandidate{point: v.Sub(refPlane.Normal.Mul(d)), depth: -d})
		}
	}
	return out
}

func createFaceContact(faceQueryA faceQuery, a hullWorld, faceQueryB faceQuery, b hullWorld) Manifold {
	aIsRef := faceQueryA.separation > faceQueryB.separation

	refHull, otherHull := a, b
	refQuery := faceQueryA
	if !aIsRef {
		refHull, otherHull = b, a
		refQuery = faceQueryB
	}

	refPlane := refHull.planes[refQuery.faceIdx]
	incidentFaceIdx := findIncidentFace(otherHull, refPlane.Normal)
	incidentVerts := otherHull.faceLoopVertices(incidentFaceIdx)

	candidates := clipIncidentFaceAgainstReference(refHull, refQuery.faceIdx, refPlane, incidentVerts)

	return buildFaceContactManifold(refPlane.Normal, candidates, aIsRef)
}

func createFaceContactPlane(h hullWorld, plane geom.Plane) Manifold {
	incidentFaceIdx := findIncidentFace(h, plane.Normal)
	verts := h.faceLoopVertices(incidentFaceIdx)

	var candidates []contactCandidate
	for _, v := range verts {
		d := getDistanceFromPlane(plane, v)
		if d < 0 {
			candidates = append(candidates, contactCandidate{point: v.Sub(plane.Normal.Mul(d)), depth: -d})
		}
	}

	return buildFaceContactManifold(plane.Normal, candidates, false)
}

// shortestSegmentBetween returns the closest pair of points between two
// finite segments, clamped to each segment's [0,1] parameter range.
func shortestSegmentBetween(seg1, seg2 segment) segment {
	v1 := seg1.P2.Sub(seg1.P1)
	v2 := seg2.P2.Sub(seg2.P1)
	v21 := seg2.P1.Sub(seg1.P1)

	dotV22 := v2.Dot(v2)
	dotV11 := v1.Dot(v1)
	dotV21 := v2.Dot(v1)
	dotV211 := v21.Dot(v1)
	dotV212 := v21.Dot(v2)

	denom := dotV21*dotV21 - dotV22*dotV11

	var s, t float64
	if abs(denom) < 1e-5 {
		s = 0
		if dotV21 != 0 {
			t = (dotV11*s - dotV211) / dotV21
		}
	} else {
		s = (dotV212*dotV21 - dotV22*dotV211) / denom
		t = (-dotV211*dotV21 + dotV11*dotV212) / denom
	}

	s = clamp01(s)
	t = clamp01(t)

	return segment{P1: seg1.P1.Add(v1.Mul(s)), P2: seg2.P1.Add(v2.Mul(t))}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func createEdgeContact(query edgeQuery, a, b hullWorld) Manifold {
	segA := a.edgeSegment(query.edgeIdxA)
	segB := b.edgeSegment(query.edgeIdxB)

	closest := shortestSegmentBetween(segA, segB)
	contact := closest.P1.Add(closest.P2).Mul(0.5)
	depth := closest.P2.Sub(closest.P1).Norm() / 2

	var m Manifold
	m.ContactPoints[0] = contact
	m.PenetrationDepths[0] = depth
	m.NumContactPoints = 1
	m.Normal = query.normal
	m.AIsReference = true
	return m
}

// doSAT runs the full hull-hull SAT test: two face-query passes, an
// edge-query pass, and dispatch to a face or edge contact depending on
// which axis is least penetrating. Returns a zero-point Manifold when a
// separating axis is found.
func doSAT(a, b hullWorld) Manifold {
	faceQueryA := queryFaceDirections(a, b)
	if faceQueryA.separation > 0 {
		return Manifold{}
	}

	faceQueryB := queryFaceDirections(b, a)
	if faceQueryB.separation > 0 {
		return Manifold{}
	}

	edgeQ := queryEdgeDirections(a, b)
	if edgeQ.hasAxis && edgeQ.separation > 0 {
		return Manifold{}
	}

	edgeSeparation := -1.0
	if edgeQ.hasAxis {
		edgeSeparation = edgeQ.separation
	} else {
		edgeSeparation = -1e18
	}

	isFaceContact := faceQueryA.separation > edgeSeparation || faceQueryB.separation > edgeSeparation
	if isFaceContact || !edgeQ.hasAxis {
		return createFaceContact(faceQueryA, a, faceQueryB, b)
	}
	return createEdgeContact(edgeQ, a, b)
}

// doSATPlane runs the hull-plane SAT test: a single face query of the hull
// against the plane's normal, then a face-contact clip if it indicates
// overlap.
func doSATPlane(plane geom.Plane, h hullWorld) Manifold {
	faceQ := queryFaceDirectionsPlane(plane, h)
	if faceQ.separation > 0 {
		return Manifold{}
	}
	return createFaceContactPlane(h, plane)
}
