package raytrace

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/qbvh"
)

// Material is the per-instance shading input spec.md §4.E's pixel-shading
// step samples: a base color, modulated by an optional texture lookup at
// the hit UV.
type Material struct {
	BaseColor [3]float64
	Texture   TextureSampler // nil means no texture, base color only
}

// TextureSampler abstracts a 2D texture lookup so the renderer doesn't
// depend on any particular image decoding library; spec.md only specifies
// the sampling contract (UV with v flipped), not a storage format.
type TextureSampler interface {
	Sample(u, v float64) [3]float64
}

// Mesh is an immutable, per-object renderable triangle mesh with its
// precomputed BLAS, shared by every instance of that object the same way
// objmgr.Record is shared across every entity of an object.
type Mesh struct {
	triangles []*Triangle
	blas      *blasNode
	localAABB geom.AABB
}

// NewMesh builds a Mesh's BLAS once from its triangle list.
func NewMesh(triangles []*Triangle) *Mesh {
	m := &Mesh{triangles: triangles, blas: buildBLAS(triangles)}
	if len(triangles) > 0 {
		min, max := computeTrianglesAABB(triangles)
		m.localAABB = geom.AABB{Min: min, Max: max}
	}
	return m
}

// Instance places a Mesh in world space with a rigid-plus-scale transform
// and an optional Material, mirroring spec.md §4.E's instance record
// ("a pointer to a per-object MeshBVH... its transform").
type Instance struct {
	Mesh     *Mesh
	Pos      r3.Vector
	Rot      geom.Quat
	Scale    geom.Diag3x3
	Material Material
}

func (inst *Instance) worldAABB() geom.AABB {
	return inst.Mesh.localAABB.ApplyTRS(inst.Pos, inst.Rot, inst.Scale)
}

// Scene is a built two-level acceleration structure: a TLAS (package qbvh)
// over instance world AABBs, with each leaf resolving to an Instance owning
// its own BLAS.
type Scene struct {
	instances []*Instance
	tlas      *qbvh.Tree
}

// NewScene builds the TLAS over instances. Instances are not expected to
// move within a Scene's lifetime -- a moving scene rebuilds a fresh Scene
// each step; there is no refit path here, unlike package broadphase, which
// chooses between rebuild and refit by a motion threshold.
func NewScene(instances []*Instance) *Scene {
	tlas := qbvh.NewTree(len(instances))
	boxes := make([]geom.AABB, len(instances))
	for i, inst := range instances {
		if _, err := tlas.ReserveLeaf(); err != nil {
			break
		}
		boxes[i] = inst.worldAABB()
	}
	tlas.Build(boxes)
	return &Scene{instances: instances, tlas: tlas}
}
