package qbvh

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/shacklettbp/miwe/geom"
)

func TestReserveLeafCapacity(t *testing.T) {
	tree := NewTree(2)
	id0, err := tree.ReserveLeaf()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id0, test.ShouldEqual, int32(0))

	id1, err := tree.ReserveLeaf()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id1, test.ShouldEqual, int32(1))

	_, err = tree.ReserveLeaf()
	test.That(t, err, test.ShouldNotBeNil)
}

func gridLeaves(n int) []geom.AABB {
	leaves := make([]geom.AABB, n)
	for i := 0; i < n; i++ {
		base := float64(i) * 3
		leaves[i] = geom.NewAABB(r3.Vector{X: base, Y: 0, Z: 0}, r3.Vector{X: base + 1, Y: 1, Z: 1})
	}
	return leaves
}

// TestQBVHConservatism asserts spec.md §8's universal property: for every
// internal node and every leaf child of it, the dequantized child AABB
// contains the leaf's AABB on all three axes, and every leaf is reachable.
func TestQBVHConservatism(t *testing.T) {
	leaves := gridLeaves(37)
	tree := NewTree(len(leaves))
	for range leaves {
		_, err := tree.ReserveLeaf()
		test.That(t, err, test.ShouldBeNil)
	}
	tree.Build(leaves)

	var walk func(ref int32, leafBoxes map[int32]bool)
	visited := map[int32]bool{}
	walk = func(ref int32, _ map[int32]bool) {
		kind, idx := DecodeChild(ref)
		if kind == ChildLeaf {
			visited[idx] = true
			return
		}
		node := &tree.Nodes[idx]
		for i := 0; i < int(node.NumChildren); i++ {
			childKind, childIdx := DecodeChild(node.ChildrenIdx[i])
			dequant := node.DequantizeChildAABB(i)
			if childKind == ChildLeaf {
				leafBox := leaves[childIdx]
				test.That(t, dequant.Min.X <= leafBox.Min.X+1e-9, test.ShouldBeTrue)
				test.That(t, dequant.Max.X >= leafBox.Max.X-1e-9, test.ShouldBeTrue)
				test.That(t, dequant.Min.Y <= leafBox.Min.Y+1e-9, test.ShouldBeTrue)
				test.That(t, dequant.Max.Y >= leafBox.Max.Y-1e-9, test.ShouldBeTrue)
				test.That(t, dequant.Min.Z <= leafBox.Min.Z+1e-9, test.ShouldBeTrue)
				test.That(t, dequant.Max.Z >= leafBox.Max.Z-1e-9, test.ShouldBeTrue)
			}
			walk(node.ChildrenIdx[i], visited)
		}
	}
	walk(tree.rootRef, visited)
	test.That(t, len(visited), test.ShouldEqual, len(leaves))
}

func TestQBVHFindOverlaps(t *testing.T) {
	leaves := []geom.AABB{
		geom.NewAABB(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 1}),
		geom.NewAABB(r3.Vector{X: 5, Y: 5, Z: 5}, r3.Vector{X: 6, Y: 6, Z: 6}),
	}
	tree := NewTree(2)
	for range leaves {
		tree.ReserveLeaf()
	}
	tree.Build(leaves)

	var hits []int32
	tree.FindOverlaps(geom.NewAABB(r3.Vector{X: -1, Y: -1, Z: -1}, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}), func(leaf int32) {
		hits = append(hits, leaf)
	})
	test.That(t, hits, test.ShouldResemble, []int32{0})
}

// TestQBVHRayScenario implements spec.md §8 scenario 5: a single internal
// node wrapping two leaves at (0,0,0)-(1,1,1) and (2,2,2)-(3,3,3).
func TestQBVHRayScenario(t *testing.T) {
	leaves := []geom.AABB{
		geom.NewAABB(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 1}),
		geom.NewAABB(r3.Vector{X: 2, Y: 2, Z: 2}, r3.Vector{X: 3, Y: 3, Z: 3}),
	}
	tree := NewTree(2)
	for range leaves {
		tree.ReserveLeaf()
	}
	tree.Build(leaves)

	_, rootIdx := DecodeChild(tree.rootRef)
	node := &tree.Nodes[rootIdx]

	checkHit := func(origin, dir r3.Vector, wantT float64) {
		found := false
		for i := 0; i < int(node.NumChildren); i++ {
			kind, idx := DecodeChild(node.ChildrenIdx[i])
			if kind != ChildLeaf || idx != 0 {
				continue
			}
			tNear, _, hit := NodeChildHit(node, i, origin, dir, 1000)
			if hit {
				found = true
				test.That(t, tNear, test.ShouldAlmostEqual, wantT)
			}
		}
		test.That(t, found, test.ShouldBeTrue)
	}

	checkHit(r3.Vector{X: -1, Y: 0.5, Z: 0.5}, r3.Vector{X: 1, Y: 0, Z: 0}, 1)
	checkHit(r3.Vector{X: 0.5, Y: -1, Z: 0.5}, r3.Vector{X: 0, Y: 1, Z: 0}, 1)

	// A ray starting far away heading further away must miss both leaves.
	missHitAny := false
	origin := r3.Vector{X: 10, Y: 10, Z: 10}
	dir := r3.Vector{X: 1, Y: 0, Z: 0}
	for i := 0; i < int(node.NumChildren); i++ {
		_, _, hit := NodeChildHit(node, i, origin, dir, 1000)
		if hit {
			missHitAny = true
		}
	}
	test.That(t, missHitAny, test.ShouldBeFalse)
}
