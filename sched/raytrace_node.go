package sched

import (
	"context"

	"github.com/shacklettbp/miwe/raytrace"
)

// SetupRaytrace registers the raytracer task-graph node: the two-level
// TLAS/BLAS traversal, one logical task per view tile on CPU (spec.md
// §4.F/§4.E), implemented here as parallelForEachPixel over the camera's
// image -- the same block-grid parallel-for the teacher's
// ParallelForEachPixel runs, with one goroutine per block looping over the
// block's pixels.
// out must be sized cam.Width*cam.Height.
func SetupRaytrace(
	b *Builder,
	scene *raytrace.Scene,
	cam *raytrace.Camera,
	tMax float64,
	out []raytrace.Pixel,
	deps ...TaskHandle,
) TaskHandle {
	return b.addNode("raytrace", deps, func(ctx context.Context) error {
		parallelForEachPixel(cam.Width, cam.Height, func(x, y int) {
			out[y*cam.Width+x] = raytrace.RenderPixel(scene, cam, tMax, x, y)
		})
		return nil
	})
}
