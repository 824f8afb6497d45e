// Package qbvh implements the four-wide quantized bounding-volume hierarchy
// (spec.md §4.B): a fixed-layout node record with 8-bit-per-axis quantized
// child bounds, built bottom-up by longest-axis median split, refit in
// place when leaf topology is unchanged, and traversed with an explicit
// depth-first stack. It is the acceleration structure of the raytracer's
// TLAS (component E; each BLAS is its own binary tree) and, in spirit, the broad-phase's
// float-bounds LinearBVH variant (package broadphase).
package qbvh

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
)

// maxChildren is the branching factor of the tree: four-wide per spec.md.
const maxChildren = 4

// absentChild is the sentinel ChildrenIdx value meaning "no child in this slot."
const absentChild = 0

// Node is the fixed-layout quantized BVH node spec.md §3 describes: a base
// point, per-axis 8-bit exponents (actual scale = 2^exp), and for each of up
// to four children the quantized bounds plus a signed child reference.
//
// ChildrenIdx encoding: 0 is absent; a positive value k is a 1-based
// reference to the internal node stored at Nodes[k-1]; a negative value
// v < 0 decodes the leaf index as -v-1 (i.e. leaf index =
// -ChildrenIdx[i] - 1).
type Node struct {
	MinPoint        r3.Vector
	ExpX, ExpY, ExpZ int8

	QMinX, QMinY, QMinZ [maxChildren]uint8
	QMaxX, QMaxY, QMaxZ [maxChildren]uint8

	NumChildren int32
	ChildrenIdx [maxChildren]int32
}

// ChildKind classifies a decoded ChildrenIdx slot.
type ChildKind int

const (
	ChildAbsent ChildKind = iota
	ChildInternal
	ChildLeaf
)

// DecodeChild interprets ChildrenIdx[i], returning which kind of reference it
// is and the associated index: for ChildInternal, a 0-based index into
// Nodes; for ChildLeaf, the 0-based leaf index; for ChildAbsent, 0.
func DecodeChild(raw int32) (ChildKind, int32) {
	switch {
	case raw == absentChild:
		return ChildAbsent, 0
	case raw < 0:
		return ChildLeaf, -raw - 1
	default:
		return ChildInternal, raw - 1
	}
}

// EncodeInternalChild returns the ChildrenIdx value referencing the internal
// node at the given 0-based Nodes index.
func EncodeInternalChild(nodeIdx int) int32 {
	return int32(nodeIdx) + 1
}

// EncodeLeafChild returns the ChildrenIdx value referencing the given
// 0-based leaf index.
func EncodeLeafChild(leafIdx int32) int32 {
	return -leafIdx - 1
}

// quantizeExponent picks an 8-bit-per-axis exponent for the given node-relative
// extent such that qMax <= 255 is achievable for every child, per spec.md's
// quantization contract. Design note 9's suggested rule is
// exp = ceil(log2(maxExtent/255)); this implementation follows it.
func quantizeExponent(maxExtent float64) int8 {
	if maxExtent <= 0 {
		return -127
	}
	e := math.Ceil(math.Log2(maxExtent / 255))
	if e < -127 {
		e = -127
	}
	if e > 127 {
		e = 127
	}
	return int8(e)
}

// quantizeChildBound encodes one child's [lo,hi] interval on one axis
// relative to base, using scale = 2^exp. qMin rounds down, qMax rounds up,
// both clamped to [0,255], so the decoded box always conservatively
// encloses [lo,hi].
func quantizeChildBound(lo, hi, base float64, exp int8) (qlo, qhi uint8) {
	scale := math.Ldexp(1, int(exp))
	lof := math.Floor((lo - base) / scale)
	hif := math.Ceil((hi - base) / scale)
	return clampByte(lof), clampByte(hif)
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// DequantizeChildAABB reconstructs the conservative child AABB on axis from
// its quantized bounds: minPoint.axis + q*2^exp.
func (n *Node) DequantizeChildAABB(i int) geom.AABB {
	sx := math.Ldexp(1, int(n.ExpX))
	sy := math.Ldexp(1, int(n.ExpY))
	sz := math.Ldexp(1, int(n.ExpZ))
	return geom.AABB{
		Min: r3.Vector{
			X: n.MinPoint.X + float64(n.QMinX[i])*sx,
			Y: n.MinPoint.Y + float64(n.QMinY[i])*sy,
			Z: n.MinPoint.Z + float64(n.QMinZ[i])*sz,
		},
		Max: r3.Vector{
			X: n.MinPoint.X + float64(n.QMaxX[i])*sx,
			Y: n.MinPoint.Y + float64(n.QMaxY[i])*sy,
			Z: n.MinPoint.Z + float64(n.QMaxZ[i])*sz,
		},
	}
}

// setChildBounds quantizes box against the node's (already-established)
// MinPoint/exponents and writes slot i's quantized bounds.
func (n *Node) setChildBounds(i int, box geom.AABB) {
	n.QMinX[i], n.QMaxX[i] = quantizeChildBound(box.Min.X, box.Max.X, n.MinPoint.X, n.ExpX)
	n.QMinY[i], n.QMaxY[i] = quantizeChildBound(box.Min.Y, box.Max.Y, n.MinPoint.Y, n.ExpY)
	n.QMinZ[i], n.QMaxZ[i] = quantizeChildBound(box.Min.Z, box.Max.Z, n.MinPoint.Z, n.ExpZ)
}
