package raytrace

import "github.com/golang/geo/r3"

// quadMesh builds a single-quad (two-triangle) mesh lying in the XY plane
// at z=0, facing +Z, with a half-extent of h.
func quadMesh(h float64) *Mesh {
	v0 := r3.Vector{X: -h, Y: -h, Z: 0}
	v1 := r3.Vector{X: h, Y: -h, Z: 0}
	v2 := r3.Vector{X: h, Y: h, Z: 0}
	v3 := r3.Vector{X: -h, Y: h, Z: 0}

	tris := []*Triangle{
		{V0: v0, V1: v1, V2: v2, UV0: [2]float64{0, 0}, UV1: [2]float64{1, 0}, UV2: [2]float64{1, 1}},
		{V0: v0, V1: v2, V2: v3, UV0: [2]float64{0, 0}, UV1: [2]float64{1, 1}, UV2: [2]float64{0, 1}},
	}
	return NewMesh(tris)
}

// scatteredTriangles returns n small triangles spread out along the X axis,
// far enough apart that a median split on X actually separates them.
func scatteredTriangles(n int) []*Triangle {
	tris := make([]*Triangle, n)
	for i := 0; i < n; i++ {
		x := float64(i) * 10
		tris[i] = &Triangle{
			V0: r3.Vector{X: x, Y: 0, Z: 0},
			V1: r3.Vector{X: x + 1, Y: 0, Z: 0},
			V2: r3.Vector{X: x, Y: 1, Z: 0},
		}
	}
	return tris
}
