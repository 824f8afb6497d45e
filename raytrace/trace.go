package raytrace

import (
	"github.com/golang/geo/r3"
)

// lightDir is the fixed Lambert light direction spec.md §4.E's pixel
// shading step names.
var lightDir = r3.Vector{X: 0.5, Y: 0.5, Z: 0}.Normalize()

const ambientTerm = 0.15

// worldRayToLocal transforms a world-space ray into an instance's local
// frame: rayO' = S^-1 . R^-1 . (rayO - pos), rayD' = S^-1 . R^-1 . rayD
// normalized, tracking tScale = |unnormalized rayD'| so a local hit
// distance divides back into world units (spec.md §4.E).
func worldRayToLocal(origin, dir r3.Vector, inst *Instance) (localOrigin, localDir r3.Vector, tScale float64) {
	invRot := inst.Rot.Conjugate()
	invScale := inst.Scale.Inverse()

	localOrigin = invScale.MulVec(invRot.RotateVec(origin.Sub(inst.Pos)))

	localDirUnnorm := invScale.MulVec(invRot.RotateVec(dir))
	tScale = localDirUnnorm.Norm()
	if tScale == 0 {
		return localOrigin, r3.Vector{}, 1
	}
	localDir = localDirUnnorm.Mul(1 / tScale)
	return localOrigin, localDir, tScale
}

// worldNormalFromLocal transforms a BLAS-space hit normal back to world
// space as R . (S . normalLocal), then normalizes -- spec.md §4.E's literal
// formula, not the inverse-transpose used for narrow-phase collision plane
// normals (package narrowphase), since here the local normal is already a
// unit vector from Triangle.Normal and this engine's shading never needs to
// be exact under non-uniform scale.
func worldNormalFromLocal(localNormal r3.Vector, inst *Instance) r3.Vector {
	return inst.Rot.RotateVec(inst.Scale.MulVec(localNormal)).Normalize()
}

// TraceRay walks the scene's TLAS with the spec's 32-entry explicit stack
// (package qbvh.Tree.RayTraverse), transforming into each candidate
// instance's local frame and recursing into its BLAS, keeping the closest
// hit in world units across every visited instance.
func TraceRay(scene *Scene, origin, dir r3.Vector, tMax float64) (HitInfo, bool) {
	var best HitInfo
	found := false

	scene.tlas.RayTraverse(origin, dir, tMax, func(leafIdx int32, tNear, tFar float64) {
		inst := scene.instances[leafIdx]
		if inst.Scale.IsZero() {
			return
		}

		localOrigin, localDir, tScale := worldRayToLocal(origin, dir, inst)
		if tScale == 0 {
			return
		}

		worldTMax := tMax
		if found {
			worldTMax = best.T
		}
		localTMax := worldTMax * tScale

		hit, ok := traverseBLAS(inst.Mesh.blas, localOrigin, localDir, localTMax)
		if !ok {
			return
		}

		worldT := hit.T / tScale
		if found && worldT >= best.T {
			return
		}

		best = HitInfo{
			T:           worldT,
			Normal:      worldNormalFromLocal(hit.Normal, inst),
			U:           hit.U,
			V:           hit.V,
			InstanceIdx: leafIdx,
			TriIdx:      hit.TriIdx,
		}
		found = true
	})

	return best, found
}

// Pixel is one shaded sample: RGBA (A always 255 on a hit) plus 32-bit
// float depth, per spec.md §4.E's write contract.
type Pixel struct {
	R, G, B, A uint8
	Depth      float32
}

// Shade applies Lambert-plus-ambient lighting to a hit using the instance's
// material, sampling its texture at the hit UV with v flipped (the
// convention spec.md §4.E names for texture coordinate origin). A miss
// writes a zero-depth, zero-color pixel.
func Shade(scene *Scene, hit HitInfo, hasHit bool) Pixel {
	if !hasHit {
		return Pixel{}
	}

	inst := scene.instances[hit.InstanceIdx]
	color := inst.Material.BaseColor
	if inst.Material.Texture != nil {
		tex := inst.Material.Texture.Sample(hit.U, 1-hit.V)
		color = [3]float64{color[0] * tex[0], color[1] * tex[1], color[2] * tex[2]}
	}

	lambert := hit.Normal.Dot(lightDir)
	if lambert < 0 {
		lambert = 0
	}
	intensity := ambientTerm + (1-ambientTerm)*lambert

	return Pixel{
		R:     toByte(color[0] * intensity),
		G:     toByte(color[1] * intensity),
		B:     toByte(color[2] * intensity),
		A:     255,
		Depth: float32(hit.T),
	}
}

func toByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v * 255)
}
