package qbvh

import (
	"sort"
	"sync/atomic"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/internal/xerrors"
)

// Tree is a four-wide quantized BVH over a caller-managed set of leaves.
// Leaves are reserved once at registration time (a monotonically increasing
// counter per spec.md's Lifecycles note) and the tree is rebuilt or refit
// each step from the current leaf AABBs.
type Tree struct {
	capacity  int32
	leafCount atomic.Int32

	Nodes   []Node
	rootRef int32 // encoded ChildrenIdx-style reference to the root node; 0 if empty
}

// NewTree allocates a Tree with room for up to capacity leaves.
func NewTree(capacity int) *Tree {
	return &Tree{capacity: int32(capacity)}
}

// ReserveLeaf atomically increments the leaf counter and returns the new
// leaf's 0-based index. It fails with a *xerrors.CapacityError once the
// configured capacity would be exceeded -- per spec.md §7 this is a caller
// misconfiguration, surfaced as an assertion failure at registration time.
func (t *Tree) ReserveLeaf() (int32, error) {
	idx := t.leafCount.Add(1) - 1
	if idx >= t.capacity {
		return -1, xerrors.NewCapacityError("qbvh leaf", int(t.capacity), int(idx)+1)
	}
	return idx, nil
}

// NumLeaves returns the number of leaves reserved so far.
func (t *Tree) NumLeaves() int {
	return int(t.leafCount.Load())
}

// Build constructs the tree bottom-up from leafAABBs (indexed 0..len-1 by
// leaf id), partitioning by longest-axis median of centroids at each level
// and packing internal nodes depth-first (pre-order) into Nodes. Node 0 in
// the returned rootRef encoding follows spec.md's "0 = absent" convention
// regardless of where the root physically lands in Nodes.
func (t *Tree) Build(leafAABBs []geom.AABB) {
	t.Nodes = t.Nodes[:0]
	if len(leafAABBs) == 0 {
		t.rootRef = 0
		return
	}
	indices := make([]int32, len(leafAABBs))
	for i := range indices {
		indices[i] = int32(i)
	}
	ref, _ := t.buildNode(indices, leafAABBs)
	t.rootRef = ref
}

// buildNode always allocates exactly one Node for the given index set (even
// when it holds a single leaf total, so the tree root is always a real
// node), partitions indices into up to four groups, and recurses into any
// group larger than one leaf.
func (t *Tree) buildNode(indices []int32, leafAABBs []geom.AABB) (int32, geom.AABB) {
	myIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{})

	groups := partitionFour(indices, leafAABBs)

	var node Node
	node.NumChildren = int32(len(groups))
	childBoxes := make([]geom.AABB, len(groups))

	for i, g := range groups {
		if len(g) == 1 {
			node.ChildrenIdx[i] = EncodeLeafChild(g[0])
			childBoxes[i] = leafAABBs[g[0]]
		} else {
			ref, box := t.buildNode(g, leafAABBs)
			node.ChildrenIdx[i] = ref
			childBoxes[i] = box
		}
	}

	unionBox := childBoxes[0]
	for _, b := range childBoxes[1:] {
		unionBox = unionBox.Union(b)
	}

	node.MinPoint = unionBox.Min
	ext := unionBox.Extent()
	node.ExpX = quantizeExponent(ext.X)
	node.ExpY = quantizeExponent(ext.Y)
	node.ExpZ = quantizeExponent(ext.Z)
	for i, b := range childBoxes {
		node.setChildBounds(i, b)
	}

	t.Nodes[myIdx] = node
	return EncodeInternalChild(myIdx), unionBox
}

// Refit keeps the tree's topology and recomputes node bounds assuming leaf
// AABBs changed but their count and arrangement did not (spec.md §4.B).
func (t *Tree) Refit(leafAABBs []geom.AABB) {
	if t.rootRef == 0 {
		return
	}
	kind, idx := DecodeChild(t.rootRef)
	if kind == ChildInternal {
		t.refitNode(int(idx), leafAABBs)
	}
}

func (t *Tree) refitNode(nodeIdx int, leafAABBs []geom.AABB) geom.AABB {
	node := &t.Nodes[nodeIdx]
	childBoxes := make([]geom.AABB, node.NumChildren)
	for i := 0; i < int(node.NumChildren); i++ {
		kind, idx := DecodeChild(node.ChildrenIdx[i])
		switch kind {
		case ChildLeaf:
			childBoxes[i] = leafAABBs[idx]
		case ChildInternal:
			childBoxes[i] = t.refitNode(int(idx), leafAABBs)
		}
	}
	unionBox := childBoxes[0]
	for _, b := range childBoxes[1:] {
		unionBox = unionBox.Union(b)
	}
	node.MinPoint = unionBox.Min
	ext := unionBox.Extent()
	node.ExpX = quantizeExponent(ext.X)
	node.ExpY = quantizeExponent(ext.Y)
	node.ExpZ = quantizeExponent(ext.Z)
	for i, b := range childBoxes {
		node.setChildBounds(i, b)
	}
	return unionBox
}

// maxStackDepth bounds the explicit DFS stack used by FindOverlaps, per
// spec.md §4.B; RayTraverse uses its own rayStackDepth.
const maxStackDepth = 128

// FindOverlaps traverses the tree from its root with a depth-first stack of
// capacity 128, invoking fn(leafIdx) once per overlapping leaf in
// insertion (children array) order, without deduplication.
func (t *Tree) FindOverlaps(box geom.AABB, fn func(leafIdx int32)) {
	if t.rootRef == 0 {
		return
	}
	kind, idx := DecodeChild(t.rootRef)
	if kind == ChildLeaf {
		fn(idx)
		return
	}

	var stack [maxStackDepth]int32
	sp := 0
	stack[sp] = idx
	sp++

	for sp > 0 {
		sp--
		nodeIdx := stack[sp]
		node := &t.Nodes[nodeIdx]
		for i := 0; i < int(node.NumChildren); i++ {
			childBox := node.DequantizeChildAABB(i)
			if !childBox.Overlaps(box) {
				continue
			}
			kind, ref := DecodeChild(node.ChildrenIdx[i])
			switch kind {
			case ChildLeaf:
				fn(ref)
			case ChildInternal:
				if sp < maxStackDepth {
					stack[sp] = ref
					sp++
				}
			}
		}
	}
}

// partitionFour splits indices into at most four non-empty groups by
// applying a longest-axis median split twice (halves, then quarters); the
// caller recurses into each group. Groups of size four or fewer are
// returned directly as singleton groups (spec.md's "few leaves" case,
// mirrored from the teacher's buildBVH leaf-threshold behavior).
func partitionFour(indices []int32, leafAABBs []geom.AABB) [][]int32 {
	if len(indices) <= maxChildren {
		groups := make([][]int32, len(indices))
		for i, idx := range indices {
			groups[i] = []int32{idx}
		}
		return groups
	}

	left, right := splitMedian(indices, leafAABBs)
	ll, lr := splitMedian(left, leafAABBs)
	rl, rr := splitMedian(right, leafAABBs)

	var groups [][]int32
	for _, g := range [][]int32{ll, lr, rl, rr} {
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// splitMedian partitions indices into two halves by sorting on the
// centroid coordinate of the longest axis of their combined AABB, then
// splitting at the midpoint index. This always produces two non-empty
// halves when len(indices) >= 2.
func splitMedian(indices []int32, leafAABBs []geom.AABB) ([]int32, []int32) {
	if len(indices) < 2 {
		return indices, nil
	}
	box := leafAABBs[indices[0]]
	for _, idx := range indices[1:] {
		box = box.Union(leafAABBs[idx])
	}
	ext := box.Extent()
	axis := longestAxis(ext)

	sorted := make([]int32, len(indices))
	copy(sorted, indices)
	sort.Slice(sorted, func(i, j int) bool {
		return centroidAxis(leafAABBs[sorted[i]], axis) < centroidAxis(leafAABBs[sorted[j]], axis)
	})

	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

func longestAxis(ext r3.Vector) int {
	axis := 0
	best := ext.X
	if ext.Y > best {
		axis, best = 1, ext.Y
	}
	if ext.Z > best {
		axis = 2
	}
	return axis
}

func centroidAxis(box geom.AABB, axis int) float64 {
	c := box.Center()
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}
