package sched

import (
	"context"

	"github.com/shacklettbp/miwe/broadphase"
	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/internal/ringbuf"
	"github.com/shacklettbp/miwe/narrowphase"
)

// SetupNarrowphase registers the narrow-phase task-graph node: a
// parallel-for over the broad-phase's candidate pairs (spec.md §4.F),
// dispatching each to narrowphase.World.ProcessCandidate via
// parallelForRange, one goroutine per contiguous chunk of candidates. "Resets the per-step scratch allocator"
// (§4.F) has no direct analog here -- this port never hand-rolls a bump
// allocator for per-pair clip scratch (package narrowphase's manifold
// clipping allocates ordinary Go slices reclaimed by the garbage
// collector); the one scratch resource this port does own, the candidate
// buffer itself, is reset by the next step's SetupBroadphase node, not
// here.
func SetupNarrowphase(
	b *Builder,
	broadphaseNode TaskHandle,
	world *narrowphase.World,
	ecs external.ECSView,
	candidates *ringbuf.Buffer[broadphase.CandidateCollision],
) TaskHandle {
	return b.addNode("narrowphase", []TaskHandle{broadphaseNode}, func(ctx context.Context) error {
		items := candidates.Items()
		parallelForRange(len(items), func(i int) {
			world.ProcessCandidate(ecs, items[i])
		})
		return nil
	})
}
