// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TopologicalOrder returns the live nodes in a topological order: every node appears
// after all its data and control predecessors.
//
// The order is deterministic: among the nodes ready at any point, the one with the
// smallest id comes first. It fails if the graph contains a cycle, and the error
// names one concrete cycle.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	g.AssertValid()
	pending := make(map[NodeId]int, g.numAlive)
	var ready []*Node
	for _, n := range g.Nodes() {
		pending[n.id] = len(n.inEdges)
		if len(n.inEdges) == 0 {
			ready = append(ready, n)
		}
	}
	// Nodes() is id-ordered, so ready starts sorted; insertions below keep it sorted.
	order := make([]*Node, 0, g.numAlive)
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		delete(pending, n.id)
		var freed []*Node
		for _, e := range n.outEdges {
			pending[e.Dst.id]--
			if pending[e.Dst.id] == 0 {
				freed = append(freed, e.Dst)
			}
		}
		sort.Slice(freed, func(i, j int) bool { return freed[i].id < freed[j].id })
		for _, f := range freed {
			at := sort.Search(len(ready), func(i int) bool { return ready[i].id > f.id })
			ready = append(ready, nil)
			copy(ready[at+1:], ready[at:])
			ready[at] = f
		}
	}
	if len(order) < g.numAlive {
		return nil, errors.Errorf("graph %q is not acyclic: %s", g.name, g.findCycle(pending))
	}
	return order, nil
}

// findCycle walks backwards from any node still pending (part of, or downstream of,
// a cycle) until a node repeats, then formats the loop it found.
func (g *Graph) findCycle(pending map[NodeId]int) string {
	var start *Node
	for id := range pending {
		if start == nil || id < start.id {
			start = g.nodes[id]
		}
	}
	if start == nil {
		return "no cycle found"
	}
	visited := make(map[NodeId]int) // node id -> position in path
	var path []*Node
	n := start
	for {
		if at, seen := visited[n.id]; seen {
			// The walk followed edges backwards; reverse so arrows match edge direction.
			loop := path[at:] // loop[0] == n
			names := make([]string, 0, len(loop)+1)
			names = append(names, n.name)
			for i := len(loop) - 1; i >= 1; i-- {
				names = append(names, loop[i].name)
			}
			names = append(names, n.name)
			return strings.Join(names, " -> ")
		}
		visited[n.id] = len(path)
		path = append(path, n)
		// Any pending predecessor will do: all remaining pending nodes have one.
		var prev *Node
		for _, e := range n.inEdges {
			if _, stillPending := pending[e.Src.id]; stillPending {
				if prev == nil || e.Src.id < prev.id {
					prev = e.Src
				}
			}
		}
		if prev == nil {
			return "no cycle found"
		}
		n = prev
	}
}

// Validate checks the structural invariants of the graph: edge endpoints are live
// nodes of this graph, the per-node edge lists are mutually consistent, output slots
// referenced by edges exist, and each node's data input slots are dense (0..k-1).
//
// The mutators preserve these invariants; Validate re-checks them wholesale, e.g.
// after deserialization.
func (g *Graph) Validate() error {
	g.AssertValid()
	for _, n := range g.Nodes() {
		if g.byName[n.name] != n {
			return errors.Errorf("node %q (id %d) is not indexed under its name", n.name, n.id)
		}
		seenSlots := make(map[int]bool, len(n.inEdges))
		for _, e := range n.inEdges {
			if e.Dst != n {
				return errors.Errorf("incoming edge %s listed on node %q but does not point to it", e, n.name)
			}
			if err := g.checkEdgeEndpoints(e); err != nil {
				return err
			}
			if !e.IsControl() {
				if seenSlots[e.DstSlot] {
					return errors.Errorf("node %q has two producers for input slot %d", n.name, e.DstSlot)
				}
				seenSlots[e.DstSlot] = true
			}
			if !containsEdge(e.Src.outEdges, e) {
				return errors.Errorf("edge %s is missing from the source's outgoing list", e)
			}
		}
		numData := n.NumDataIn()
		for slot := 0; slot < numData; slot++ {
			if !seenSlots[slot] {
				return errors.Errorf("node %q has %d data inputs but no producer for slot %d", n.name, numData, slot)
			}
		}
		for _, e := range n.outEdges {
			if e.Src != n {
				return errors.Errorf("outgoing edge %s listed on node %q but does not start from it", e, n.name)
			}
			if err := g.checkEdgeEndpoints(e); err != nil {
				return err
			}
			if !containsEdge(e.Dst.inEdges, e) {
				return errors.Errorf("edge %s is missing from the destination's incoming list", e)
			}
		}
	}
	return nil
}

func (g *Graph) checkEdgeEndpoints(e *Edge) error {
	for _, endpoint := range []*Node{e.Src, e.Dst} {
		if endpoint == nil {
			return errors.Errorf("edge %s has a nil endpoint", e)
		}
		if endpoint.graph != g {
			return errors.Errorf("edge %s has an endpoint from another graph", e)
		}
		if endpoint.id == InvalidNodeId || g.nodes[endpoint.id] != endpoint {
			return errors.Errorf("edge %s has a removed endpoint %q", e, endpoint.name)
		}
	}
	if !e.IsControl() {
		if e.SrcSlot < 0 || e.SrcSlot >= e.Src.NumOutputs() {
			return errors.Errorf("edge %s references output slot %d of node %q, which has %d outputs",
				e, e.SrcSlot, e.Src.name, e.Src.NumOutputs())
		}
		if e.DstSlot < 0 {
			return errors.Errorf("edge %s has a negative input slot", e)
		}
	} else if e.DstSlot != ControlSlot {
		return errors.Errorf("control edge %s must use the control slot on both endpoints", e)
	}
	return nil
}

func containsEdge(edges []*Edge, e *Edge) bool {
	for _, candidate := range edges {
		if candidate == e {
			return true
		}
	}
	return false
}
