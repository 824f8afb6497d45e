package broadphase

import (
	"github.com/golang/geo/r3"

	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/internal/ringbuf"
	"github.com/shacklettbp/miwe/internal/xerrors"
	"github.com/shacklettbp/miwe/logging"
	"github.com/shacklettbp/miwe/objmgr"
)

// Config controls one World's broad-phase policy.
type Config struct {
	// MaxEntities sizes the per-world leaf array; spec.md §4.C's "leaf array
	// sized by maxDynamicObjects" -- named here for every registered entity
	// regardless of ResponseType, since a static entity still needs a leaf
	// for dynamic-vs-static overlap queries to find it.
	MaxEntities int
	// AABBEpsilon pads every world AABB on every side before insertion. It
	// does not enter the rebuild decision, which uses centroid motion only.
	AABBEpsilon float64
	// RebuildMotionThreshold is the summed per-leaf centroid displacement
	// (since the last full Build) past which World.Step rebuilds instead of
	// refitting.
	RebuildMotionThreshold float64
	// ParallelFor, if non-nil, drives the per-leaf world-AABB recompute
	// across workers instead of a single goroutine -- package sched's
	// SetupBroadphase wires its own worker-pool primitive in here rather
	// than this package importing sched directly, which would cycle back
	// through sched's own import of broadphase.CandidateCollision. A nil
	// ParallelFor (the zero value) runs the recompute sequentially.
	ParallelFor func(n int, f func(i int))
}

// World is one simulation world's broad-phase state: a leaf array of
// world-space entity AABBs and the linearTree built or refit over them.
type World struct {
	cfg     Config
	objects external.ObjectTable
	logger  logging.Logger

	tree linearTree

	leafEntity    []external.EntityLoc
	leafAABB      []geom.AABB
	buildCentroid []r3.Vector // snapshot of each leaf's center as of the last rebuild
	leavesAtBuild int
	numLeaves     int
	everBuilt     bool
}

// NewWorld allocates a World with room for cfg.MaxEntities leaves.
func NewWorld(cfg Config, objects external.ObjectTable, logger logging.Logger) *World {
	return &World{
		cfg:           cfg,
		objects:       objects,
		logger:        logger,
		leafEntity:    make([]external.EntityLoc, 0, cfg.MaxEntities),
		leafAABB:      make([]geom.AABB, 0, cfg.MaxEntities),
		buildCentroid: make([]r3.Vector, 0, cfg.MaxEntities),
	}
}

// RegisterEntity reserves a leaf slot for e, computing its initial world AABB
// from ecs/objects. Leaves are reserved once at registration time and never
// removed, per spec.md's entity-lifecycle note.
func (w *World) RegisterEntity(e external.EntityLoc, ecs external.ECSView) (int32, error) {
	if len(w.leafEntity) >= w.cfg.MaxEntities {
		return -1, xerrors.NewCapacityError("broadphase leaf", w.cfg.MaxEntities, len(w.leafEntity)+1)
	}
	idx := int32(len(w.leafEntity))
	w.leafEntity = append(w.leafEntity, e)
	w.leafAABB = append(w.leafAABB, w.computeWorldAABB(e, ecs))
	w.buildCentroid = append(w.buildCentroid, r3.Vector{})
	w.numLeaves++
	return idx, nil
}

func (w *World) computeWorldAABB(e external.EntityLoc, ecs external.ECSView) geom.AABB {
	obj := w.objects.Object(ecs.ObjectID(e))
	box := obj.AABB.ApplyTRS(ecs.Position(e), ecs.Rotation(e), ecs.Scale(e))
	return box.Expand(w.cfg.AABBEpsilon)
}

// Step refreshes every non-static leaf's world AABB, decides whether to
// rebuild or refit the tree, and emits deduplicated candidate pairs into
// candidates. Static entities' AABBs are computed once at registration and
// never recomputed here, since static geometry never moves.
func (w *World) Step(ecs external.ECSView, candidates *ringbuf.Buffer[CandidateCollision]) {
	recompute := func(i int) {
		e := w.leafEntity[i]
		if ecs.ResponseType(e) == objmgr.Static {
			return
		}
		w.leafAABB[i] = w.computeWorldAABB(e, ecs)
	}
	if w.cfg.ParallelFor != nil {
		w.cfg.ParallelFor(len(w.leafEntity), recompute)
	} else {
		for i := range w.leafEntity {
			recompute(i)
		}
	}

	motion := 0.0
	for i, box := range w.leafAABB {
		motion += box.Center().Sub(w.buildCentroid[i]).Norm()
	}

	needsRebuild := !w.everBuilt || len(w.leafEntity) != w.leavesAtBuild || motion > w.cfg.RebuildMotionThreshold
	if needsRebuild {
		w.tree.build(w.leafAABB)
		w.everBuilt = true
		w.leavesAtBuild = len(w.leafEntity)
		for i, box := range w.leafAABB {
			w.buildCentroid[i] = box.Center()
		}
		w.logger.Debugw("broadphase rebuild", "leaves", len(w.leafAABB), "motion", motion)
	} else {
		w.tree.refit(w.leafAABB)
	}

	w.emitCandidates(ecs, candidates)
}

// emitCandidates queries the tree for every leaf's own overlaps and pushes
// each unordered pair exactly once: the pair is only emitted while
// processing the numerically smaller entity's leaf, and both-Static pairs
// are skipped per spec.md §4.C.
func (w *World) emitCandidates(ecs external.ECSView, candidates *ringbuf.Buffer[CandidateCollision]) {
	for i, ei := range w.leafEntity {
		box := w.leafAABB[i]
		w.tree.findOverlaps(box, func(j int32) {
			if int(j) == i {
				return
			}
			ej := w.leafEntity[j]
			if ei == ej {
				return
			}
			a, b := ei, ej
			if a > b {
				a, b = b, a
			}
			if a != ei {
				return
			}
			if ecs.ResponseType(ei) == objmgr.Static && ecs.ResponseType(ej) == objmgr.Static {
				return
			}
			candidates.Push(CandidateCollision{A: a, B: b, PrimA: -1, PrimB: -1})
		})
	}
}

// NumLeaves returns the number of entities currently registered in this
// World's broad-phase.
func (w *World) NumLeaves() int {
	return w.numLeaves
}

// SetParallelFor installs the worker-pool primitive Step uses to recompute
// per-leaf world AABBs, overriding cfg.ParallelFor after construction.
// Package sched's SetupBroadphase calls this with its own parallel-for so
// the recompute runs across workers without this package importing sched.
func (w *World) SetParallelFor(fn func(n int, f func(i int))) {
	w.cfg.ParallelFor = fn
}
