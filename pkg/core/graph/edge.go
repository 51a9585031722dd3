// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// ControlSlot is the slot number used on both endpoints of a control edge.
const ControlSlot = -1

// Edge connects an output slot of Src to an input slot of Dst.
//
// For a data edge, SrcSlot addresses one of Src's output slots and DstSlot one of
// Dst's input slots. For a control edge both slots are ControlSlot. Edges are owned
// by the graph: create them with Graph.AddEdge or Graph.AddControlEdge and remove
// them with Graph.RemoveEdge.
type Edge struct {
	Src     *Node
	SrcSlot int
	Dst     *Node
	DstSlot int
}

// IsControl reports whether this is a control edge.
func (e *Edge) IsControl() bool { return e.SrcSlot == ControlSlot }

// String implements fmt.Stringer.
func (e *Edge) String() string {
	if e == nil {
		return "Edge(nil)"
	}
	if e.IsControl() {
		return fmt.Sprintf("%s -> ^%s", e.Src.Name(), e.Dst.Name())
	}
	return fmt.Sprintf("%s:%d -> %s:%d", e.Src.Name(), e.SrcSlot, e.Dst.Name(), e.DstSlot)
}

// AddEdge connects output slot srcSlot of src to input slot dstSlot of dst.
//
// It fails if srcSlot is not a valid output of src, if either slot is negative, or
// if dstSlot already has a producer: each input slot takes exactly one. Self-loops
// are rejected.
func (g *Graph) AddEdge(src *Node, srcSlot int, dst *Node, dstSlot int) (*Edge, error) {
	g.assertOwns(src)
	g.assertOwns(dst)
	if src == dst {
		return nil, errors.Errorf("cannot add self-loop on node %q", src.name)
	}
	if srcSlot < 0 || srcSlot >= src.NumOutputs() {
		return nil, errors.Errorf("node %q has %d outputs, cannot use output slot %d as edge source", src.name, src.NumOutputs(), srcSlot)
	}
	if dstSlot < 0 {
		return nil, errors.Errorf("cannot connect %q:%d to negative input slot %d of %q", src.name, srcSlot, dstSlot, dst.name)
	}
	if prev := dst.InDataEdge(dstSlot); prev != nil {
		return nil, errors.Errorf("input slot %d of node %q is already fed by %q:%d", dstSlot, dst.name, prev.Src.name, prev.SrcSlot)
	}
	e := &Edge{Src: src, SrcSlot: srcSlot, Dst: dst, DstSlot: dstSlot}
	src.outEdges = append(src.outEdges, e)
	dst.inEdges = append(dst.inEdges, e)
	return e, nil
}

// AddControlEdge adds a control edge from src to dst, constraining dst to execute
// after src. Adding a control edge that already exists returns the existing edge.
func (g *Graph) AddControlEdge(src, dst *Node) (*Edge, error) {
	g.assertOwns(src)
	g.assertOwns(dst)
	if src == dst {
		return nil, errors.Errorf("cannot add control self-loop on node %q", src.name)
	}
	for _, e := range dst.inEdges {
		if e.IsControl() && e.Src == src {
			return e, nil
		}
	}
	e := &Edge{Src: src, SrcSlot: ControlSlot, Dst: dst, DstSlot: ControlSlot}
	src.outEdges = append(src.outEdges, e)
	dst.inEdges = append(dst.inEdges, e)
	return e, nil
}

// HasControlEdge reports whether a control edge from src to dst exists.
func (g *Graph) HasControlEdge(src, dst *Node) bool {
	g.assertOwns(src)
	g.assertOwns(dst)
	for _, e := range dst.inEdges {
		if e.IsControl() && e.Src == src {
			return true
		}
	}
	return false
}

// RemoveEdge disconnects the edge from both endpoints. The *Edge becomes invalid
// and must not be used afterwards.
func (g *Graph) RemoveEdge(e *Edge) {
	g.assertOwns(e.Src)
	g.assertOwns(e.Dst)
	e.Src.outEdges = dropEdge(e.Src.outEdges, e)
	e.Dst.inEdges = dropEdge(e.Dst.inEdges, e)
}

// MoveEdgeSrc rewires the edge to read from newSrc:newSrcSlot, keeping the
// destination endpoint. For control edges pass ControlSlot as newSrcSlot.
func (g *Graph) MoveEdgeSrc(e *Edge, newSrc *Node, newSrcSlot int) error {
	g.assertOwns(e.Src)
	g.assertOwns(newSrc)
	if e.IsControl() != (newSrcSlot == ControlSlot) {
		return errors.Errorf("cannot change edge %s between data and control while moving its source", e)
	}
	if newSrc == e.Dst {
		return errors.Errorf("moving edge %s to source %q would create a self-loop", e, newSrc.name)
	}
	if !e.IsControl() && (newSrcSlot < 0 || newSrcSlot >= newSrc.NumOutputs()) {
		return errors.Errorf("node %q has %d outputs, cannot use output slot %d as edge source", newSrc.name, newSrc.NumOutputs(), newSrcSlot)
	}
	e.Src.outEdges = dropEdge(e.Src.outEdges, e)
	e.Src = newSrc
	e.SrcSlot = newSrcSlot
	newSrc.outEdges = append(newSrc.outEdges, e)
	return nil
}

func dropEdge(edges []*Edge, e *Edge) []*Edge {
	for i, candidate := range edges {
		if candidate == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
