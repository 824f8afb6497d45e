package raytrace

import (
	"math"

	"github.com/golang/geo/r3"
)

// Camera describes the pinhole ray generator a view strip renders through.
// Origin/Forward/Up/Right are world-space and assumed orthonormal
// (Right = Forward x Up); FovY is in radians.
type Camera struct {
	Origin, Forward, Up, Right r3.Vector
	FovY                       float64
	Width, Height              int
}

// rayForPixel generates the camera ray through pixel (x, y), per spec.md's
// "one thread owns one pixel" scheduling model.
func (c *Camera) rayForPixel(x, y int) (origin, dir r3.Vector) {
	aspect := float64(c.Width) / float64(c.Height)
	tanFov := tanHalf(c.FovY)

	px := (2*((float64(x)+0.5)/float64(c.Width)) - 1) * aspect * tanFov
	py := (1 - 2*((float64(y)+0.5)/float64(c.Height))) * tanFov

	dir = c.Forward.Add(c.Right.Mul(px)).Add(c.Up.Mul(py)).Normalize()
	return c.Origin, dir
}

func tanHalf(fovY float64) float64 {
	return math.Tan(fovY / 2)
}

// RenderPixel traces and shades a single pixel, the per-thread unit of work
// spec.md §4.E's scheduling model describes ("each thread owns one pixel").
// sched.SetupRaytrace calls this from inside its own parallel-for.
func RenderPixel(scene *Scene, cam *Camera, tMax float64, x, y int) Pixel {
	origin, dir := cam.rayForPixel(x, y)
	hit, ok := TraceRay(scene, origin, dir, tMax)
	return Shade(scene, hit, ok)
}

// RenderTile shades every pixel in [x0,x1)x[y0,y1) of cam's image into out,
// which must be sized cam.Width*cam.Height, by calling RenderPixel for each.
// sched.SetupRaytrace does not use it: its parallel-for calls RenderPixel
// per pixel directly.
func RenderTile(scene *Scene, cam *Camera, tMax float64, x0, y0, x1, y1 int, out []Pixel) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			out[y*cam.Width+x] = RenderPixel(scene, cam, tMax, x, y)
		}
	}
}

// GPUTraceKernel describes the CUDA-backed deployment spec.md §4.E and §5
// name as the second scheduling target: one GPU block per camera view
// strip, one thread per pixel, warps synchronized between views. CUDA
// codegen is out of scope for this port; the core exposes the node and its
// dependency contract without an implementation, matching design note 9's
// treatment of `bvh_raycast.cpp`'s unfinished GPU traversal as
// non-authoritative.
type GPUTraceKernel interface {
	// Launch dispatches one task-graph node's worth of tile tracing against
	// device-resident scene and framebuffer handles. Implementations own
	// their own CUDA stream and synchronization.
	Launch(scene *Scene, cam *Camera, tMax float64) error
}
