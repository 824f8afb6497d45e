package raytrace

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBuildBLASStaysLeafUnderThreshold(t *testing.T) {
	node := buildBLAS(scatteredTriangles(3))
	test.That(t, node.triangles, test.ShouldNotBeNil)
	test.That(t, node.left, test.ShouldBeNil)
	test.That(t, node.right, test.ShouldBeNil)
}

func TestBuildBLASSplitsAboveThreshold(t *testing.T) {
	node := buildBLAS(scatteredTriangles(10))
	test.That(t, node.triangles, test.ShouldBeNil)
	test.That(t, node.left, test.ShouldNotBeNil)
	test.That(t, node.right, test.ShouldNotBeNil)
}

func TestBuildBLASEmptyReturnsNil(t *testing.T) {
	node := buildBLAS(nil)
	test.That(t, node, test.ShouldBeNil)
}

func TestRayTriangleIntersectHitsAndMisses(t *testing.T) {
	mesh := quadMesh(1)
	tri := mesh.triangles[0]

	_, _, _, hit := rayTriangleIntersect(
		r3.Vector{X: 0, Y: -0.2, Z: -5}, r3.Vector{X: 0, Y: 0, Z: 1}, tri)
	test.That(t, hit, test.ShouldBeTrue)

	_, _, _, miss := rayTriangleIntersect(
		r3.Vector{X: 5, Y: 5, Z: -5}, r3.Vector{X: 0, Y: 0, Z: 1}, tri)
	test.That(t, miss, test.ShouldBeFalse)
}
