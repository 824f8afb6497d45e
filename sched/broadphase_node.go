package sched

import (
	"context"

	"github.com/shacklettbp/miwe/broadphase"
	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/internal/ringbuf"
)

// SetupBroadphase registers the broad-phase task-graph node: rebuild-or-refit
// the BVH, then emit this step's candidate pairs, per spec.md §4.F. deps are
// any nodes from a prior step (or prior world setup) this node must wait
// behind; spec.md §5 names the previous step's transform writes as the one
// such ordering constraint across steps. world's per-leaf world-AABB
// recompute is wired to this package's own parallelForRange, so the
// rebuild/refit prep work spreads across the worker pool the same way
// SetupNarrowphase's candidate dispatch does.
func SetupBroadphase(
	b *Builder,
	world *broadphase.World,
	ecs external.ECSView,
	candidates *ringbuf.Buffer[broadphase.CandidateCollision],
	deps ...TaskHandle,
) TaskHandle {
	world.SetParallelFor(parallelForRange)
	return b.addNode("broadphase", deps, func(ctx context.Context) error {
		candidates.Reset()
		world.Step(ecs, candidates)
		return nil
	})
}
