// Package physcore is the module root: it wires broadphase/narrowphase/
// sched together behind the three registration entry
// points spec.md §6 names (registerTypes, init, registerEntity, in Go
// casing) and the per-step task graph §4.F and §5 describe. Everything this
// package does is glue -- the actual collision-detection and ray-tracing
// logic lives in the packages it imports.
package physcore

import (
	"context"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/shacklettbp/miwe/broadphase"
	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/internal/ringbuf"
	"github.com/shacklettbp/miwe/logging"
	"github.com/shacklettbp/miwe/narrowphase"
	"github.com/shacklettbp/miwe/objmgr"
	"github.com/shacklettbp/miwe/sched"
)

// LeafID is the value registerEntity returns: the broad-phase leaf index
// assigned to a newly registered entity, per spec.md §6.
type LeafID = int32

// EngineConfig mirrors init's scalar parameters (dt, numSubsteps, gravity,
// maxDynamicObjects) as a single struct, since Go favors a config value over
// a long positional parameter list where the teacher's own config.Config
// does the same.
type EngineConfig struct {
	Dt                float64
	NumSubsteps       int
	Gravity           r3.Vector
	MaxDynamicObjects int
	// AABBEpsilon and RebuildMotionThreshold forward directly to
	// broadphase.Config unchanged; zero values mean no AABB padding and a
	// rebuild whenever any leaf's centroid moves.
	AABBEpsilon            float64
	RebuildMotionThreshold float64
}

// Engine is one world's fully wired collision core: broad-phase, narrow-
// phase, and the candidate buffer connecting them. Raytracing is wired
// separately via SetupRaytrace against its own Scene, since spec.md §4.F
// describes E as running standalone, not chained off B->C->D.
type Engine struct {
	cfg     EngineConfig
	objects *objmgr.Manager
	solver  external.SolverSurface
	cvx     external.CvxSolver // optional, currently unconsumed -- see external.CvxSolver doc

	broadphase  *broadphase.World
	narrowphase *narrowphase.World
	candidates  *ringbuf.Buffer[broadphase.CandidateCollision]

	logger logging.Logger
}

// RegisterTypes declares this core's component-type requirements to the
// ECS's type registry: Position, Rotation, Scale, ObjectID, and
// ResponseType, the five fields ECSView reads per entity (spec.md §3/§6).
// It does not touch solver beyond confirming it is non-nil, since the
// solver's own component types (velocities, constraint state) are its own
// concern, not this core's -- the parameter is named to match
// registerTypes(registry, solver)'s signature in spec.md §6.
func RegisterTypes(registry external.TypeRegistry, solver external.SolverSurface) error {
	if registry == nil {
		return errors.New("physcore: RegisterTypes requires a non-nil registry")
	}
	if solver == nil {
		return errors.New("physcore: RegisterTypes requires a non-nil solver")
	}
	registry.RegisterComponentType("Position", 24)    // 3 x float64
	registry.RegisterComponentType("Rotation", 32)    // quat.Number
	registry.RegisterComponentType("Scale", 24)       // Diag3x3
	registry.RegisterComponentType("ObjectID", 4)     // int32
	registry.RegisterComponentType("ResponseType", 1) // enum byte
	return nil
}

// Init constructs one world's Engine: the broad-phase and narrow-phase
// worlds, sized for maxDynamicObjects leaves, plus the candidate buffer
// connecting them. ctx is accepted (and currently unused beyond a
// liveness check) to match init(context, ...)'s signature in spec.md §6 --
// the core itself has no cancellable work to do at construction time,
// per §5's "cancellation is the task graph's concern."
func Init(
	ctx context.Context,
	objects *objmgr.Manager,
	cfg EngineConfig,
	solver external.SolverSurface,
	optionalCvxSolver external.CvxSolver,
) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "physcore: Init")
	}
	if objects == nil {
		return nil, errors.New("physcore: Init requires a non-nil object manager")
	}
	if solver == nil {
		return nil, errors.New("physcore: Init requires a non-nil solver")
	}
	if cfg.MaxDynamicObjects <= 0 {
		return nil, errors.Errorf("physcore: Init requires MaxDynamicObjects > 0, got %d", cfg.MaxDynamicObjects)
	}

	logger := logging.Global().Named("physcore")

	bp := broadphase.NewWorld(broadphase.Config{
		MaxEntities:            cfg.MaxDynamicObjects,
		AABBEpsilon:            cfg.AABBEpsilon,
		RebuildMotionThreshold: cfg.RebuildMotionThreshold,
	}, objects, logger.Named("broadphase"))

	np := narrowphase.NewWorld(objects, solver, nil, logger.Named("narrowphase"))

	return &Engine{
		cfg:         cfg,
		objects:     objects,
		solver:      solver,
		cvx:         optionalCvxSolver,
		broadphase:  bp,
		narrowphase: np,
		candidates:  ringbuf.NewBuffer[broadphase.CandidateCollision]("candidates", cfg.MaxDynamicObjects*cfg.MaxDynamicObjects),
		logger:      logger,
	}, nil
}

// RegisterEntity reserves a broad-phase leaf for a newly spawned entity and
// returns its LeafID. numDofs is accepted to match spec.md §6's
// registerEntity(context, entity, objectID, numDofs, solver) signature; the
// collision core itself has no per-DOF state (that belongs to the solver),
// so it is not otherwise consumed here.
func (e *Engine) RegisterEntity(
	ctx context.Context,
	ecs external.ECSView,
	entity external.EntityLoc,
	objectID objmgr.ObjectID,
	numDofs int,
	solver external.SolverSurface,
) (LeafID, error) {
	if err := ctx.Err(); err != nil {
		return -1, errors.Wrap(err, "physcore: RegisterEntity")
	}
	leaf, err := e.broadphase.RegisterEntity(entity, ecs)
	if err != nil {
		return -1, errors.Wrap(err, "physcore: RegisterEntity")
	}
	return leaf, nil
}

// Step runs one simulation step's collision-detection graph: broad-phase
// rebuild/refit and candidate emission, followed by narrow-phase dispatch
// over those candidates, in that order (spec.md §5's within-step ordering
// guarantee). Raytracing is deliberately not part of this graph -- wire
// sched.SetupRaytrace into a caller's own graph against a raytrace.Scene,
// since §4.F describes E as standalone.
func (e *Engine) Step(ctx context.Context, ecs external.ECSView) error {
	g := sched.NewGraph(e.logger)
	b := g.Builder()
	bp := sched.SetupBroadphase(b, e.broadphase, ecs, e.candidates)
	sched.SetupNarrowphase(b, bp, e.narrowphase, ecs, e.candidates)
	return g.Run(ctx)
}

// NumLeaves returns the number of entities currently registered in this
// Engine's broad-phase.
func (e *Engine) NumLeaves() int {
	return e.broadphase.NumLeaves()
}
