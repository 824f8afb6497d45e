package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestAABBOverlaps(t *testing.T) {
	a := NewAABB(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 1})
	b := NewAABB(r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, r3.Vector{X: 2, Y: 2, Z: 2})
	c := NewAABB(r3.Vector{X: 2, Y: 2, Z: 2}, r3.Vector{X: 3, Y: 3, Z: 3})

	test.That(t, a.Overlaps(b), test.ShouldBeTrue)
	test.That(t, a.Overlaps(c), test.ShouldBeFalse)
}

func TestAABBUnion(t *testing.T) {
	a := NewAABB(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 1})
	b := NewAABB(r3.Vector{X: -1, Y: -1, Z: -1}, r3.Vector{X: 0.5, Y: 0.5, Z: 0.5})
	u := a.Union(b)
	test.That(t, u.Min, test.ShouldResemble, r3.Vector{X: -1, Y: -1, Z: -1})
	test.That(t, u.Max, test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 1})
}

// TestAABBTRSMonotonicity asserts spec.md §8's universal property: for any
// AABB B and transform (t,R,S), the eight transformed corners of B are all
// inside applyTRS(B, t, R, S).
func TestAABBTRSMonotonicity(t *testing.T) {
	b := NewAABB(r3.Vector{X: -1, Y: -1, Z: -1}, r3.Vector{X: 1, Y: 1, Z: 1})
	rot := NewQuat(math.Cos(math.Pi/8), 0, 0, math.Sin(math.Pi/8)) // 45 deg about Z
	scale := Diag3x3{2, 1, 0.5}
	pos := r3.Vector{X: 3, Y: -2, Z: 1}

	transformed := b.ApplyTRS(pos, rot, scale)

	for _, c := range b.corners() {
		world := rot.RotateVec(scale.MulVec(c)).Add(pos)
		test.That(t, transformed.ContainsPoint(world), test.ShouldBeTrue)
	}
}

func TestAABBExpand(t *testing.T) {
	b := NewAABB(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 1, Y: 1, Z: 1})
	e := b.Expand(0.1)
	test.That(t, e.Min.X, test.ShouldAlmostEqual, -0.1)
	test.That(t, e.Max.X, test.ShouldAlmostEqual, 1.1)
}
