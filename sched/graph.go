// Package sched implements spec.md §4.F's task-graph scheduling glue: three
// node constructors (SetupBroadphase, SetupNarrowphase, SetupRaytrace) that
// return an opaque TaskHandle with declared-not-executed dependencies, plus
// a minimal CPU task graph that runs those nodes sequentially in
// topological order per world, per §5's "work-stealing pool executes one
// task-graph node at a time... nodes run sequentially in topological order
// per world." Each node's internal parallel-for is grounded on
// go.viam.com/rdk/utils/parallel.go's GroupWorkParallel/ParallelForEachPixel
// shape, built directly against the real go.viam.com/utils.PanicCapturingGo
// dependency for panic containment per worker goroutine.
package sched

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shacklettbp/miwe/logging"
)

// TaskHandle is the opaque reference a node constructor returns; callers
// pass it to a later constructor to declare a dependency, never to inspect
// or execute it directly (spec.md §4.F: "dependencies are declared, not
// executed").
type TaskHandle int32

type nodeFunc func(ctx context.Context) error

type node struct {
	name string
	run  nodeFunc
	deps []TaskHandle
}

// Graph is a sequence of task-graph nodes for one world, run in the order
// they were registered. Registration order is always a valid topological
// order here: every SetupX call that declares a dependency takes that
// dependency's already-returned TaskHandle as an argument, which is only
// obtainable after that node was registered.
type Graph struct {
	nodes  []node
	logger logging.Logger
}

// NewGraph constructs an empty task graph for one world.
func NewGraph(logger logging.Logger) *Graph {
	return &Graph{logger: logger}
}

// Builder is the handle SetupX constructors use to register a node against
// a Graph. Kept distinct from Graph so call sites read as "builder,
// dependencies" the way spec.md's setupBroadphase(builder, deps) does.
type Builder struct {
	graph *Graph
}

// Builder returns g's node-registration handle.
func (g *Graph) Builder() *Builder {
	return &Builder{graph: g}
}

func (b *Builder) addNode(name string, deps []TaskHandle, run nodeFunc) TaskHandle {
	for _, d := range deps {
		if int(d) < 0 || int(d) >= len(b.graph.nodes) {
			panic(errors.Errorf("task-graph node %q declared a dependency on unregistered handle %d", name, d))
		}
	}
	b.graph.nodes = append(b.graph.nodes, node{name: name, run: run, deps: deps})
	return TaskHandle(len(b.graph.nodes) - 1)
}

// Run executes every registered node once, in registration order. A node
// panicking is recovered and reported as an error tagged with the node's
// name, rather than taking down the caller. A panic inside a worker
// goroutine of a node's own parallel-for is caught and logged by
// PanicCapturingGo instead, and does not become an error returned here.
func (g *Graph) Run(ctx context.Context) error {
	for _, n := range g.nodes {
		if err := runNode(ctx, n); err != nil {
			return errors.Wrapf(err, "task-graph node %q", n.name)
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "task-graph node %q", n.name)
		default:
		}
	}
	return nil
}

func runNode(ctx context.Context, n node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return n.run(ctx)
}
