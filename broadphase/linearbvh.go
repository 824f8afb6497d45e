// Package broadphase implements the per-world broad-phase (spec.md §4.C):
// a four-wide AABB tree over every registered entity's world AABB, rebuilt or refit
// each step per a motion-threshold policy, producing a deduplicated stream
// of CandidateCollision pairs. It uses its own float-bounds LinearNode
// layout (spec.md §3's "LinearBVH Node (broad-phase variant)") rather than
// package qbvh's quantized Node, since the broad-phase never needs to share
// node memory with the GPU raytracer.
package broadphase

import (
	"sort"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

const (
	leafBit  uint32 = 0x80000000
	sentinel uint32 = 0xFFFFFFFF
	wide            = 4
)

// LinearNode is the float-bounds four-wide broad-phase node spec.md §3
// describes: each child slot carries its own bounds and a children[4]
// reference whose high bit flags "leaf."
type LinearNode struct {
	ChildMin    [wide]r3.Vector
	ChildMax    [wide]r3.Vector
	Children    [wide]uint32
	NumChildren int32
}

// decodeLinearChild interprets one Children[i] slot.
func decodeLinearChild(c uint32) (isLeaf, absent bool, idx uint32) {
	if c == sentinel {
		return false, true, 0
	}
	if c&leafBit != 0 {
		return true, false, c &^ leafBit
	}
	return false, false, c
}

func encodeLeafChild(idx int32) uint32    { return leafBit | uint32(idx) }
func encodeInternalChild(idx int32) uint32 { return uint32(idx) }

// linearTree is the broad-phase's own small tree builder, mirroring
// package qbvh's longest-axis median-split recursion but over float bounds
// with no quantization step.
type linearTree struct {
	nodes []LinearNode
	root  uint32
	empty bool
}

func (t *linearTree) build(leafAABBs []geom.AABB) {
	t.nodes = t.nodes[:0]
	if len(leafAABBs) == 0 {
		t.empty = true
		return
	}
	t.empty = false
	indices := make([]int32, len(leafAABBs))
	for i := range indices {
		indices[i] = int32(i)
	}
	t.root = t.buildNode(indices, leafAABBs)
}

func (t *linearTree) buildNode(indices []int32, leafAABBs []geom.AABB) uint32 {
	myIdx := len(t.nodes)
	t.nodes = append(t.nodes, LinearNode{})

	groups := partitionFour(indices, leafAABBs)
	var node LinearNode
	node.NumChildren = int32(len(groups))
	for i := range node.Children {
		node.Children[i] = sentinel
	}

	for i, g := range groups {
		if len(g) == 1 {
			node.Children[i] = encodeLeafChild(g[0])
			node.ChildMin[i] = leafAABBs[g[0]].Min
			node.ChildMax[i] = leafAABBs[g[0]].Max
		} else {
			box := unionOf(g, leafAABBs)
			ref := t.buildNode(g, leafAABBs)
			node.Children[i] = encodeInternalChild(int32(ref))
			node.ChildMin[i] = box.Min
			node.ChildMax[i] = box.Max
		}
	}

	t.nodes[myIdx] = node
	return uint32(myIdx)
}

func (t *linearTree) refit(leafAABBs []geom.AABB) {
	if t.empty {
		return
	}
	t.refitNode(int(t.root), leafAABBs)
}

func (t *linearTree) refitNode(nodeIdx int, leafAABBs []geom.AABB) geom.AABB {
	node := &t.nodes[nodeIdx]
	var union geom.AABB
	first := true
	for i := 0; i < int(node.NumChildren); i++ {
		isLeaf, absent, idx := decodeLinearChild(node.Children[i])
		if absent {
			continue
		}
		var box geom.AABB
		if isLeaf {
			box = leafAABBs[idx]
		} else {
			box = t.refitNode(int(idx), leafAABBs)
		}
		node.ChildMin[i] = box.Min
		node.ChildMax[i] = box.Max
		if first {
			union = box
			first = false
		} else {
			union = union.Union(box)
		}
	}
	return union
}

// findOverlaps traverses the tree from its root with an explicit
// depth-first stack, invoking fn(leafIdx) per overlapping leaf, in
// insertion order, without deduplication (spec.md §4.B's traversal
// contract applies identically to this variant).
func (t *linearTree) findOverlaps(box geom.AABB, fn func(leafIdx int32)) {
	if t.empty {
		return
	}
	const maxDepth = 128
	var stack [maxDepth]uint32
	sp := 0
	stack[sp] = t.root
	sp++

	for sp > 0 {
		sp--
		node := &t.nodes[stack[sp]]
		for i := 0; i < int(node.NumChildren); i++ {
			isLeaf, absent, idx := decodeLinearChild(node.Children[i])
			if absent {
				continue
			}
			childBox := geom.AABB{Min: node.ChildMin[i], Max: node.ChildMax[i]}
			if !childBox.Overlaps(box) {
				continue
			}
			if isLeaf {
				fn(int32(idx))
			} else if sp < maxDepth {
				stack[sp] = idx
				sp++
			}
		}
	}
}

func unionOf(indices []int32, leafAABBs []geom.AABB) geom.AABB {
	box := leafAABBs[indices[0]]
	for _, idx := range indices[1:] {
		box = box.Union(leafAABBs[idx])
	}
	return box
}

func partitionFour(indices []int32, leafAABBs []geom.AABB) [][]int32 {
	if len(indices) <= wide {
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

func splitMedian(indices []int32, leafAABBs []geom.AABB) ([]int32, []int32) {
	if len(indices) < 2 {
		return indices, nil
	}
	box := unionOf(indices, leafAABBs)
	ext := box.Extent()
	axis := 0
	best := ext.X
	if ext.Y > best {
		axis, best = 1, ext.Y
	}
	if ext.Z > best {
		axis = 2
	}

	sorted := make([]int32, len(indices))
	copy(sorted, indices)
	sort.Slice(sorted, func(i, j int) bool {
		return axisVal(leafAABBs[sorted[i]].Center(), axis) < axisVal(leafAABBs[sorted[j]].Center(), axis)
	})
	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

func axisVal(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
