package taskflow

import (
	"context"
	"fmt"

	"github.com/vk/planflow/internal/nodeid"
)

// TaskFunc is the body of a graph node.
type TaskFunc func(ctx context.Context) error

// Graph is a directed acyclic graph of tasks. It is built by a single
// goroutine and must not be modified while an Executor runs it.
type Graph struct {
	name  string
	nodes map[string]*node
	order []*node
}

type node struct {
	id         *nodeid.Address
	fn         TaskFunc
	deps       map[string]*node
	dependents map[string]*node
	// depOrder and dependentOrder keep edge insertion order for deterministic runs.
	depOrder       []*node
	dependentOrder []*node
}

func (n *node) key() string { return n.id.String() }

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{name: name, nodes: make(map[string]*node)}
}

func (g *Graph) Name() string { return g.name }
func (g *Graph) Len() int     { return len(g.nodes) }

// Ref is anything edges can be attached to: a Task or an embedded Segment.
type Ref interface {
	heads() []*node
	tails() []*node
}

// Task is a handle to one node of a graph.
type Task struct {
	n *node
}

func (t Task) ID() *nodeid.Address { return t.n.id }
func (t Task) heads() []*node      { return []*node{t.n} }
func (t Task) tails() []*node      { return []*node{t.n} }

// Segment is a handle to an embedded sub-graph. Edges attach to its begin
// and end marker nodes, so an empty sub-graph still orders its neighbours.
type Segment struct {
	id         *nodeid.Address
	begin, end *node
}

func (s Segment) ID() *nodeid.Address { return s.id }
func (s Segment) heads() []*node      { return []*node{s.begin} }
func (s Segment) tails() []*node      { return []*node{s.end} }

// AddTask adds a node. It panics if the id is already taken; ids are chosen
// by generator code, so a clash is a programming error.
func (g *Graph) AddTask(seg nodeid.PathSegment, fn TaskFunc) Task {
	return Task{n: g.add(nodeid.New(seg), fn)}
}

// AddNamedTask is AddTask with an unindexed segment.
func (g *Graph) AddNamedTask(name string, fn TaskFunc) Task {
	return g.AddTask(nodeid.NewPathSegment(name), fn)
}

func (g *Graph) add(id *nodeid.Address, fn TaskFunc) *node {
	key := id.String()
	if _, exists := g.nodes[key]; exists {
		panic(fmt.Sprintf("task '%s' already exists in graph '%s'", key, g.name))
	}
	if fn == nil {
		fn = noop
	}
	n := &node{
		id:         id,
		fn:         fn,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[key] = n
	g.order = append(g.order, n)
	return n
}

func noop(context.Context) error { return nil }

// Precede adds edges so that from runs before every ref in to.
func (g *Graph) Precede(from Ref, to ...Ref) error {
	for _, t := range to {
		for _, tail := range from.tails() {
			for _, head := range t.heads() {
				if err := g.addEdge(tail, head); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *Graph) addEdge(from, to *node) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from.key(), from.key())
	}
	if g.nodes[from.key()] != from {
		return fmt.Errorf("source node not found: %s", from.key())
	}
	if g.nodes[to.key()] != to {
		return fmt.Errorf("destination node not found: %s", to.key())
	}
	if _, exists := from.dependents[to.key()]; exists {
		return nil
	}
	to.deps[from.key()] = from
	to.depOrder = append(to.depOrder, from)
	from.dependents[to.key()] = to
	from.dependentOrder = append(from.dependentOrder, to)
	return nil
}

// Embed moves every node of sub into g under the given segment and returns
// a handle to it. sub must not be used afterwards.
func (g *Graph) Embed(seg nodeid.PathSegment, sub *Graph) Segment {
	prefix := nodeid.New(seg)
	begin := g.add(prefix.Child(nodeid.NewPathSegment("begin")), nil)
	end := g.add(prefix.Child(nodeid.NewPathSegment("end")), nil)

	for _, n := range sub.order {
		n.id = n.id.Under(prefix)
		key := n.key()
		if _, exists := g.nodes[key]; exists {
			panic(fmt.Sprintf("task '%s' already exists in graph '%s'", key, g.name))
		}
		g.nodes[key] = n
		g.order = append(g.order, n)
	}
	// Maps inside the moved nodes are keyed by the old ids.
	for _, n := range sub.order {
		n.deps = rekey(n.depOrder)
		n.dependents = rekey(n.dependentOrder)
	}

	for _, n := range sub.order {
		if len(n.depOrder) == 0 {
			_ = g.addEdge(begin, n)
		}
		if len(n.dependentOrder) == 0 {
			_ = g.addEdge(n, end)
		}
	}
	if len(sub.order) == 0 {
		_ = g.addEdge(begin, end)
	}
	sub.nodes, sub.order = nil, nil
	return Segment{id: prefix, begin: begin, end: end}
}

func rekey(nodes []*node) map[string]*node {
	m := make(map[string]*node, len(nodes))
	for _, n := range nodes {
		m[n.key()] = n
	}
	return m
}

// Sources returns the nodes without predecessors, in insertion order.
func (g *Graph) Sources() []Task {
	var out []Task
	for _, n := range g.order {
		if len(n.depOrder) == 0 {
			out = append(out, Task{n: n})
		}
	}
	return out
}

// Sinks returns the nodes without successors, in insertion order.
func (g *Graph) Sinks() []Task {
	var out []Task
	for _, n := range g.order {
		if len(n.dependentOrder) == 0 {
			out = append(out, Task{n: n})
		}
	}
	return out
}

// Task looks up a node by its canonical id string.
func (g *Graph) Task(id string) (Task, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Task{}, false
	}
	return Task{n: n}, true
}

// IDs returns every node id in insertion order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.order))
	for i, n := range g.order {
		out[i] = n.key()
	}
	return out
}

// Dependencies returns the ids of the nodes id depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return keys(n.depOrder), nil
}

// Dependents returns the ids of the nodes that depend on id.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return keys(n.dependentOrder), nil
}

func keys(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.key()
	}
	return out
}

// DetectCycles returns an error naming a node on a cycle, if any.
func (g *Graph) DetectCycles() error {
	// permanent: fully visited. temporary: on the current DFS stack.
	permanent := make(map[*node]bool)
	temporary := make(map[*node]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n] {
			return nil
		}
		if temporary[n] {
			return fmt.Errorf("cycle detected involving node '%s'", n.key())
		}
		temporary[n] = true
		for _, dependent := range n.dependentOrder {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n)
		permanent[n] = true
		return nil
	}

	for _, n := range g.order {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}
