// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graph defines the mutable dataflow graph that the partitioning passes operate on.
//
// A Graph holds uniquely named operation nodes connected by data and control edges.
// A data edge carries a tensor from one of the producer's output slots to one of the
// consumer's input slots; a control edge only constrains execution order and uses
// ControlSlot on both endpoints. Unlike a computation graph built for immediate
// execution, this representation is freely editable: passes rename nodes, rewire
// edges and replace whole subgraphs, and the mutators keep the structural invariants
// (unique names, one producer per input slot, no dangling edges).
//
// Node ids are assigned in creation order and never reused, which gives every pass a
// cheap deterministic iteration order: Graph.Nodes returns live nodes sorted by id.
//
// A Graph is not safe for concurrent mutation.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// NodeId is a unique id of a Node within a Graph.
//
// Ids are assigned in creation order and are never reused: a removed node leaves a
// hole in the id space. Iterate with Graph.Nodes, which skips holes, rather than
// ranging over 0..NumNodes.
type NodeId int

// InvalidNodeId indicates a node that failed to be created or has been removed.
const InvalidNodeId = NodeId(-1)

// Graph is a mutable dataflow graph.
//
// Create one with New, add nodes with AddNode and connect them with AddEdge and
// AddControlEdge. All mutating methods validate their inputs and return an error on
// malformed requests; they panic (with a stack trace) only on nil receivers or nodes
// that belong to a different graph, which are bugs in the caller.
type Graph struct {
	name string

	// nodes is the arena indexed by NodeId. Removed nodes leave a nil entry.
	nodes    []*Node
	byName   map[string]*Node
	numAlive int

	attrs map[string]any
}

// New creates an empty Graph with the given name.
func New(name string) *Graph {
	return &Graph{
		name:   name,
		byName: make(map[string]*Node),
		attrs:  make(map[string]any),
	}
}

// Name of the graph, set at creation.
func (g *Graph) Name() string {
	g.AssertValid()
	return g.name
}

// AssertValid panics if g is nil.
func (g *Graph) AssertValid() {
	if g == nil {
		exceptions.Panicf("the Graph is nil")
	}
}

// assertOwns panics if the node is nil, removed or belongs to a different graph.
func (g *Graph) assertOwns(n *Node) {
	g.AssertValid()
	if n == nil {
		exceptions.Panicf("the Node is nil")
	}
	if n.graph != g {
		exceptions.Panicf("node %q belongs to graph %q, not to graph %q", n.name, n.graph.name, g.name)
	}
	if n.id == InvalidNodeId {
		exceptions.Panicf("node %q has already been removed from graph %q", n.name, g.name)
	}
}

// AddNode creates a node with the given name, operation type and output slots and
// adds it to the graph.
//
// It fails if the name is empty or already taken. Zero output slots are valid: sink
// operations produce no tensors.
func (g *Graph) AddNode(name, op string, outputs []OutputSlot) (*Node, error) {
	g.AssertValid()
	if name == "" {
		return nil, errors.Errorf("cannot add node with empty name to graph %q", g.name)
	}
	if op == "" {
		return nil, errors.Errorf("cannot add node %q with empty operation type to graph %q", name, g.name)
	}
	if _, found := g.byName[name]; found {
		return nil, errors.Errorf("graph %q already has a node named %q", g.name, name)
	}
	n := &Node{
		graph:   g,
		id:      NodeId(len(g.nodes)),
		name:    name,
		op:      op,
		outputs: append([]OutputSlot(nil), outputs...),
	}
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	g.numAlive++
	return n, nil
}

// NodeByName returns the node with the given name, or nil if there is none.
func (g *Graph) NodeByName(name string) *Node {
	g.AssertValid()
	return g.byName[name]
}

// NodeById returns the node with the given id.
// It returns nil if the id is out of range or the node has been removed.
func (g *Graph) NodeById(id NodeId) *Node {
	g.AssertValid()
	if id <= InvalidNodeId || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// NumNodes returns the number of live nodes.
func (g *Graph) NumNodes() int {
	g.AssertValid()
	return g.numAlive
}

// Nodes returns the live nodes in increasing id order.
// The returned slice is freshly allocated and can be modified by the caller; the
// nodes themselves are shared with the graph.
func (g *Graph) Nodes() []*Node {
	g.AssertValid()
	all := make([]*Node, 0, g.numAlive)
	for _, n := range g.nodes {
		if n != nil {
			all = append(all, n)
		}
	}
	return all
}

// RemoveNode removes the node and all its incident edges from the graph.
// The node's id is retired and never reused.
func (g *Graph) RemoveNode(n *Node) {
	g.assertOwns(n)
	for _, e := range append([]*Edge(nil), n.inEdges...) {
		g.RemoveEdge(e)
	}
	for _, e := range append([]*Edge(nil), n.outEdges...) {
		g.RemoveEdge(e)
	}
	g.nodes[n.id] = nil
	delete(g.byName, n.name)
	g.numAlive--
	n.id = InvalidNodeId
}

// RenameNode changes the node's name, keeping all edges intact.
// It fails if the new name is empty or already taken by another node.
func (g *Graph) RenameNode(n *Node, newName string) error {
	g.assertOwns(n)
	if newName == n.name {
		return nil
	}
	if newName == "" {
		return errors.Errorf("cannot rename node %q to an empty name", n.name)
	}
	if _, found := g.byName[newName]; found {
		return errors.Errorf("cannot rename node %q to %q: graph %q already has a node with that name", n.name, newName, g.name)
	}
	delete(g.byName, n.name)
	n.name = newName
	g.byName[newName] = n
	return nil
}

// SetAttr sets a graph-level attribute.
func (g *Graph) SetAttr(key string, value any) {
	g.AssertValid()
	g.attrs[key] = value
}

// Attr returns a graph-level attribute and whether it was set.
func (g *Graph) Attr(key string) (value any, found bool) {
	g.AssertValid()
	value, found = g.attrs[key]
	return
}

// DeleteAttr removes a graph-level attribute, if set.
func (g *Graph) DeleteAttr(key string) {
	g.AssertValid()
	delete(g.attrs, key)
}

// Attrs returns the graph-level attribute keys, sorted.
func (g *Graph) Attrs() []string {
	g.AssertValid()
	keys := make([]string, 0, len(g.attrs))
	for key := range g.attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetAttrOr returns the graph-level attribute for key cast to T, or defaultValue if
// the attribute is not set. It panics if the attribute is set to a different type.
func GetAttrOr[T any](g *Graph, key string, defaultValue T) T {
	valueAny, found := g.Attr(key)
	if !found || valueAny == nil {
		return defaultValue
	}
	value, ok := valueAny.(T)
	if !ok {
		exceptions.Panicf("graph %q attribute %q is a %T, requested as %T", g.name, key, valueAny, defaultValue)
	}
	return value
}

// NumEdges returns the number of edges, counting control edges.
func (g *Graph) NumEdges() int {
	g.AssertValid()
	count := 0
	for _, n := range g.nodes {
		if n != nil {
			count += len(n.outEdges)
		}
	}
	return count
}

// String returns a multi-line listing of the graph, one node per line, in id order.
func (g *Graph) String() string {
	if g == nil {
		return "Graph(nil)"
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "Graph %q: %d nodes, %d edges\n", g.name, g.NumNodes(), g.NumEdges())
	for _, n := range g.Nodes() {
		_, _ = fmt.Fprintf(&sb, "\t%s\n", n)
	}
	return sb.String()
}
