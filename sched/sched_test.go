package sched

import (
	"context"
	"sync"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/shacklettbp/miwe/broadphase"
	"github.com/shacklettbp/miwe/external"
	"github.com/shacklettbp/miwe/geom"
	"github.com/shacklettbp/miwe/internal/ringbuf"
	"github.com/shacklettbp/miwe/logging"
	"github.com/shacklettbp/miwe/narrowphase"
	"github.com/shacklettbp/miwe/objmgr"
	"github.com/shacklettbp/miwe/raytrace"
)

type fakeECS struct {
	positions []r3.Vector
	objIDs    []objmgr.ObjectID
	responses []objmgr.ResponseType
}

func (f *fakeECS) Position(e external.EntityLoc) r3.Vector             { return f.positions[e] }
func (f *fakeECS) Rotation(e external.EntityLoc) geom.Quat             { return geom.IdentityQuat() }
func (f *fakeECS) Scale(e external.EntityLoc) geom.Diag3x3             { return geom.IdentityScale }
func (f *fakeECS) ObjectID(e external.EntityLoc) objmgr.ObjectID       { return f.objIDs[e] }
func (f *fakeECS) ResponseType(e external.EntityLoc) objmgr.ResponseType {
	return f.responses[e]
}
func (f *fakeECS) NumEntities() int { return len(f.positions) }

type fakeSolver struct {
	mu        sync.Mutex
	contacts  []external.ContactConstraint
}

func (s *fakeSolver) PushContact(c external.ContactConstraint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, c)
}

// TestGraphRunsBroadphaseThenNarrowphase wires the two node constructors
// together end to end: two overlapping spheres must produce exactly one
// contact by the time the graph finishes.
func TestGraphRunsBroadphaseThenNarrowphase(t *testing.T) {
	objects := objmgr.NewManager([]objmgr.Record{
		objmgr.NewRecord([]objmgr.Primitive{objmgr.NewSpherePrimitive(0.5)}, 1, 0.5),
	})
	ecs := &fakeECS{
		positions: []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 0}},
		objIDs:    []objmgr.ObjectID{0, 0},
		responses: []objmgr.ResponseType{objmgr.Dynamic, objmgr.Dynamic},
	}

	bpWorld := broadphase.NewWorld(
		broadphase.Config{MaxEntities: 8, AABBEpsilon: 0.01, RebuildMotionThreshold: 0.1},
		objects, logging.NewTestLogger())
	for e := range ecs.positions {
		_, err := bpWorld.RegisterEntity(external.EntityLoc(e), ecs)
		test.That(t, err, test.ShouldBeNil)
	}

	candidates := ringbuf.NewBuffer[broadphase.CandidateCollision]("candidates", 16)
	solver := &fakeSolver{}
	npWorld := narrowphase.NewWorld(objects, solver, nil, logging.NewTestLogger())

	g := NewGraph(logging.NewTestLogger())
	b := g.Builder()
	bpNode := SetupBroadphase(b, bpWorld, ecs, candidates)
	SetupNarrowphase(b, bpNode, npWorld, ecs, candidates)

	test.That(t, g.Run(context.Background()), test.ShouldBeNil)
	test.That(t, len(solver.contacts), test.ShouldEqual, 1)
}

// TestGraphRunsRaytraceNode exercises SetupRaytrace end to end against a
// tiny image and a single quad instance directly in front of the camera.
func TestGraphRunsRaytraceNode(t *testing.T) {
	inst := &raytrace.Instance{
		Mesh:     quadMeshForTest(1),
		Pos:      r3.Vector{X: 0, Y: 0, Z: 5},
		Rot:      geom.IdentityQuat(),
		Scale:    geom.IdentityScale,
		Material: raytrace.Material{BaseColor: [3]float64{1, 1, 1}},
	}
	scene := raytrace.NewScene([]*raytrace.Instance{inst})
	cam := &raytrace.Camera{
		Origin:  r3.Vector{},
		Forward: r3.Vector{X: 0, Y: 0, Z: 1},
		Up:      r3.Vector{X: 0, Y: 1, Z: 0},
		Right:   r3.Vector{X: 1, Y: 0, Z: 0},
		FovY:    1.0,
		Width:   8,
		Height:  8,
	}
	out := make([]raytrace.Pixel, cam.Width*cam.Height)

	g := NewGraph(logging.NewTestLogger())
	b := g.Builder()
	SetupRaytrace(b, scene, cam, 100, out)

	test.That(t, g.Run(context.Background()), test.ShouldBeNil)

	center := out[cam.Height/2*cam.Width+cam.Width/2]
	test.That(t, center.A, test.ShouldEqual, uint8(255))
}

func quadMeshForTest(h float64) *raytrace.Mesh {
	v0 := r3.Vector{X: -h, Y: -h, Z: 0}
	v1 := r3.Vector{X: h, Y: -h, Z: 0}
	v2 := r3.Vector{X: h, Y: h, Z: 0}
	v3 := r3.Vector{X: -h, Y: h, Z: 0}
	return raytrace.NewMesh([]*raytrace.Triangle{
		{V0: v0, V1: v1, V2: v2},
		{V0: v0, V1: v2, V2: v3},
	})
}
