// Package raytrace implements spec.md §4.E's two-level ray tracer: a
// top-level QBVH (package qbvh) over scene instances, and a bottom-level
// binary BVH over each instance's triangle mesh, grounded on
// go.viam.com/rdk/spatialmath's buildBVH/computeTrianglesAABB triangle-BVH
// shape (spatialmath/bvh.go, spatialmath/bvh_test.go) rather than qbvh's
// quantized node layout -- the BLAS never needs the TLAS's 8-bit
// quantization, since it is rebuilt once per mesh at load time, not every
// step.
package raytrace

import "github.com/golang/geo/r3"

// Triangle is one renderable triangle in a mesh's local space, carrying per
// vertex UVs for texture sampling.
type Triangle struct {
	V0, V1, V2    r3.Vector
	UV0, UV1, UV2 [2]float64
}

// Centroid returns the triangle's average vertex, the key buildBLAS sorts
// triangles by when choosing a split axis.
func (t *Triangle) Centroid() r3.Vector {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Normal returns the triangle's geometric (unnormalized-input) face normal.
func (t *Triangle) Normal() r3.Vector {
	return t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)).Normalize()
}

func componentMin(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: minF(a.X, b.X), Y: minF(a.Y, b.Y), Z: minF(a.Z, b.Z)}
}

func componentMax(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: maxF(a.X, b.X), Y: maxF(a.Y, b.Y), Z: maxF(a.Z, b.Z)}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
