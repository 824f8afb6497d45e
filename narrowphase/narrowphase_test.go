package narrowphase

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/logging"
	"github.com/shacklettbp/miwe/objmgr"
)

func TestSphereSphereOverlap(t *testing.T) {
	m, ok := sphereSphere(r3.Vector{X: 0, Y: 0, Z: 0}, 1, r3.Vector{X: 1.5, Y: 0, Z: 0}, 1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.NumContactPoints, test.ShouldEqual, 1)
	test.That(t, m.PenetrationDepths[0], test.ShouldAlmostEqual, 0.5)
	test.That(t, m.Normal.X, test.ShouldAlmostEqual, 1.0)
}

func TestSphereSphereSeparated(t *testing.T) {
	_, ok := sphereSphere(r3.Vector{X: 0, Y: 0, Z: 0}, 1, r3.Vector{X: 5, Y: 0, Z: 0}, 1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestSpherePlanePenetrating(t *testing.T) {
	m, ok := spherePlane(r3.Vector{X: 0, Y: 0, Z: 0.4}, 1, r3.Vector{X: 0, Y: 0, Z: 0}, geom.IdentityQuat())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.PenetrationDepths[0], test.ShouldAlmostEqual, 0.6)
	test.That(t, m.AIsReference, test.ShouldBeFalse)
}

func TestSpherePlaneSeparated(t *testing.T) {
	_, ok := spherePlane(r3.Vector{X: 0, Y: 0, Z: 5}, 1, r3.Vector{X: 0, Y: 0, Z: 0}, geom.IdentityQuat())
	test.That(t, ok, test.ShouldBeFalse)
}

func TestSphereHullPenetrating(t *testing.T) {
	mesh := boxMesh(0.5)
	hull := makeHullWorld(mesh, r3.Vector{}, geom.IdentityQuat(), geom.IdentityScale)

	m, ok := sphereHull(r3.Vector{X: 0, Y: 0, Z: 0.6}, 0.3, hull)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.Normal.Z, test.ShouldAlmostEqual, 1.0)
	test.That(t, m.PenetrationDepths[0], test.ShouldAlmostEqual, 0.2)
}

func TestSphereHullSeparated(t *testing.T) {
	mesh := boxMesh(0.5)
	hull := makeHullWorld(mesh, r3.Vector{}, geom.IdentityQuat(), geom.IdentityScale)

	_, ok := sphereHull(r3.Vector{X: 0, Y: 0, Z: 5}, 0.3, hull)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestHullHullOverlappingBoxesProducesFaceManifold(t *testing.T) {
	meshA := boxMesh(0.5)
	meshB := boxMesh(0.5)

	a := makeHullWorld(meshA, r3.Vector{X: 0, Y: 0, Z: 0}, geom.IdentityQuat(), geom.IdentityScale)
	b := makeHullWorld(meshB, r3.Vector{X: 0.8, Y: 0, Z: 0}, geom.IdentityQuat(), geom.IdentityScale)

	m := doSAT(a, b)
	test.That(t, m.NumContactPoints, test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, m.NumContactPoints, test.ShouldBeLessThanOrEqualTo, 4)
	// Two axis-aligned unit cubes overlapping along X must report a normal
	// parallel to X.
	test.That(t, abs(m.Normal.Y), test.ShouldBeLessThan, 1e-6)
	test.That(t, abs(m.Normal.Z), test.ShouldBeLessThan, 1e-6)
}

func TestHullHullSeparatedBoxesNoContact(t *testing.T) {
	meshA := boxMesh(0.5)
	meshB := boxMesh(0.5)

	a := makeHullWorld(meshA, r3.Vector{X: 0, Y: 0, Z: 0}, geom.IdentityQuat(), geom.IdentityScale)
	b := makeHullWorld(meshB, r3.Vector{X: 10, Y: 0, Z: 0}, geom.IdentityQuat(), geom.IdentityScale)

	m := doSAT(a, b)
	test.That(t, m.NumContactPoints, test.ShouldEqual, 0)
}

func TestHullPlaneOverlap(t *testing.T) {
	mesh := boxMesh(0.5)
	hull := makeHullWorld(mesh, r3.Vector{X: 0, Y: 0, Z: 0.3}, geom.IdentityQuat(), geom.IdentityScale)

	plane := geom.Plane{Normal: r3.Vector{X: 0, Y: 0, Z: 1}, D: 0}
	m := doSATPlane(plane, hull)
	test.That(t, m.NumContactPoints, test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, m.AIsReference, test.ShouldBeFalse)
}

func TestHullPlaneSeparated(t *testing.T) {
	mesh := boxMesh(0.5)
	hull := makeHullWorld(mesh, r3.Vector{X: 0, Y: 0, Z: 10}, geom.IdentityQuat(), geom.IdentityScale)

	plane := geom.Plane{Normal: r3.Vector{X: 0, Y: 0, Z: 1}, D: 0}
	m := doSATPlane(plane, hull)
	test.That(t, m.NumContactPoints, test.ShouldEqual, 0)
}

// TestPlanePlanePanicsAsInvariantViolation asserts a Plane-Plane candidate
// pair reaching dispatch is treated as a fatal invariant violation
// (spec.md §7.2), not logged and silently dropped: both participants are
// always static, so broad-phase should never emit this pair in the first
// place, and a pair reaching here indicates a build-time bug upstream.
func TestPlanePlanePanicsAsInvariantViolation(t *testing.T) {
	w := NewWorld(nil, nil, nil, logging.NewTestLogger())
	planeA := objmgr.NewPlanePrimitive()
	planeB := objmgr.NewPlanePrimitive()

	defer func() {
		r := recover()
		test.That(t, r, test.ShouldNotBeNil)
	}()

	w.dispatchPrimitivePair(
		external.EntityLoc(0), r3.Vector{}, geom.IdentityQuat(), geom.IdentityScale, planeA,
		external.EntityLoc(1), r3.Vector{}, geom.IdentityQuat(), geom.IdentityScale, planeB,
	)
	t.Fatal("expected dispatchPrimitivePair to panic on a Plane-Plane pair")
}

// TestReduceToFourPointsNeverDropsToFewerThanFour ensures the corrected
// swap-remove reduction always keeps four distinct extreme points when more
// than four candidates are offered, instead of the source's in-place
// overwrite occasionally re-selecting the first point as a later "extreme."
func TestReduceToFourPointsNeverDropsToFewerThanFour(t *testing.T) {
	normal := r3.Vector{X: 0, Y: 0, Z: 1}
	candidates := []contactCandidate{
		{point: r3.Vector{X: 0, Y: 0, Z: 0}, depth: 0.1},
		{point: r3.Vector{X: 1, Y: 0, Z: 0}, depth: 0.1},
		{point: r3.Vector{X: 1, Y: 1, Z: 0}, depth: 0.1},
		{point: r3.Vector{X: 0, Y: 1, Z: 0}, depth: 0.1},
		{point: r3.Vector{X: 0.5, Y: 0.5, Z: 0}, depth: 0.1},
	}

	reduced := reduceToFourPoints(normal, candidates)
	test.That(t, len(reduced), test.ShouldEqual, 4)

	seen := map[r3.Vector]bool{}
	for _, c := range reduced {
		test.That(t, seen[c.point], test.ShouldBeFalse)
		seen[c.point] = true
	}
}
