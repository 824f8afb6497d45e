package qbvh

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// safeInvDir computes 1/d componentwise; a zero component gets
// copysign(1e5, d) as its inverse, so a ray exactly parallel to a slab never
// divides by zero -- spec.md §4.B's numerical-degeneracy recovery for rays.
func safeInvDir(d r3.Vector) r3.Vector {
	return r3.Vector{X: safeInv(d.X), Y: safeInv(d.Y), Z: safeInv(d.Z)}
}

func safeInv(d float64) float64 {
	if d == 0 {
		return math.Copysign(1e5, d)
	}
	return 1 / d
}

// RaySlabTest implements spec.md §4.B's ray-box slab test: compute invDir
// with sign-preserving zero replacement, then
// tNear = max(min(tx0,tx1), min(ty0,ty1), min(tz0,tz1), 0) and
// tFar = min(max(tx0,tx1), max(ty0,ty1), max(tz0,tz1), tMax); hit when
// tNear <= tFar.
func RaySlabTest(origin, dir r3.Vector, tMax float64, box geom.AABB) (tNear, tFar float64, hit bool) {
	inv := safeInvDir(dir)

	tx0 := (box.Min.X - origin.X) * inv.X
	tx1 := (box.Max.X - origin.X) * inv.X
	ty0 := (box.Min.Y - origin.Y) * inv.Y
	ty1 := (box.Max.Y - origin.Y) * inv.Y
	tz0 := (box.Min.Z - origin.Z) * inv.Z
	tz1 := (box.Max.Z - origin.Z) * inv.Z

	tNear = math.Max(math.Max(math.Min(tx0, tx1), math.Min(ty0, ty1)), math.Max(math.Min(tz0, tz1), 0))
	tFar = math.Min(math.Min(math.Max(tx0, tx1), math.Max(ty0, ty1)), math.Min(math.Max(tz0, tz1), tMax))

	return tNear, tFar, tNear <= tFar
}

// rayStackDepth bounds the explicit DFS stack RayTraverse uses, per spec.md
// §4.E's two-level raytracer traversal contract.
const rayStackDepth = 32

// RayTraverse walks the tree from its root with a 32-entry explicit stack,
// invoking visit(leafIdx, tNear, tFar) once per leaf whose quantized bound
// the ray intersects within [0, tMax]. Leaves are visited in stack-pop
// order, not sorted by distance -- callers that need the nearest hit keep
// their own running minimum across calls, exactly as the two-level
// TLAS/BLAS tracer does over per-instance BLAS results.
func (t *Tree) RayTraverse(origin, dir r3.Vector, tMax float64, visit func(leafIdx int32, tNear, tFar float64)) {
	if t.rootRef == 0 {
		return
	}
	_, rootIdx := DecodeChild(t.rootRef)

	var stack [rayStackDepth]int32
	sp := 0
	stack[sp] = rootIdx
	sp++

	for sp > 0 {
		sp--
		node := &t.Nodes[stack[sp]]
		for i := 0; i < int(node.NumChildren); i++ {
			tNear, tFar, hit := NodeChildHit(node, i, origin, dir, tMax)
			if !hit {
				continue
			}
			kind, ref := DecodeChild(node.ChildrenIdx[i])
			switch kind {
			case ChildLeaf:
				visit(ref, tNear, tFar)
			case ChildInternal:
				if sp < rayStackDepth {
					stack[sp] = ref
					sp++
				}
			}
		}
	}
}

// NodeChildHit reports whether child slot i of node is hit by the ray,
// along with the resulting [tNear, tFar] interval. The quantized bound is
// dequantized to a float AABB first; spec.md §9 notes the fully fused
// fixed-point variant as a possible further optimization this port does not
// pursue.
func NodeChildHit(node *Node, i int, origin, dir r3.Vector, tMax float64) (tNear, tFar float64, hit bool) {
	return RaySlabTest(origin, dir, tMax, node.DequantizeChildAABB(i))
}
