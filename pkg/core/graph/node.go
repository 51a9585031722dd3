// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// OutputSlot describes one output of a node: the tensor's dtype and whether the
// output is a reference to mutable state (a variable) rather than a plain value.
type OutputSlot struct {
	DType dtypes.DType
	Ref   bool
}

// String implements fmt.Stringer: the dtype name, with a "&" prefix for references.
func (s OutputSlot) String() string {
	if s.Ref {
		return "&" + s.DType.String()
	}
	return s.DType.String()
}

// Node is an operation in a Graph.
//
// Nodes are created with Graph.AddNode and always belong to exactly one graph.
// The name is unique within the graph; the op is the operation type ("MatMul",
// "Const", ...) and is what the capability oracles key on.
type Node struct {
	graph *Graph
	id    NodeId
	name  string
	op    string

	outputs []OutputSlot
	attrs   map[string]any

	// inEdges and outEdges are unordered; use DataIn, DataOut and ControlIn for
	// deterministic views.
	inEdges  []*Edge
	outEdges []*Edge
}

// Graph the node belongs to.
func (n *Node) Graph() *Graph { return n.graph }

// Id of the node within its graph. It returns InvalidNodeId after the node has been
// removed.
func (n *Node) Id() NodeId {
	if n == nil {
		return InvalidNodeId
	}
	return n.id
}

// Name of the node, unique within its graph.
func (n *Node) Name() string { return n.name }

// Op is the operation type of the node.
func (n *Node) Op() string { return n.op }

// NumOutputs returns the number of output slots.
func (n *Node) NumOutputs() int { return len(n.outputs) }

// Output returns the output slot with the given index.
func (n *Node) Output(slot int) OutputSlot {
	if slot < 0 || slot >= len(n.outputs) {
		exceptions.Panicf("node %q has %d outputs, slot %d requested", n.name, len(n.outputs), slot)
	}
	return n.outputs[slot]
}

// Outputs returns a copy of the node's output slots.
func (n *Node) Outputs() []OutputSlot {
	return append([]OutputSlot(nil), n.outputs...)
}

// HasRefOutput reports whether any output slot is a reference to mutable state.
func (n *Node) HasRefOutput() bool {
	for _, slot := range n.outputs {
		if slot.Ref {
			return true
		}
	}
	return false
}

// SetAttr sets a node attribute. Attributes hold the pass-private markers as well as
// operation parameters carried over from the graph definition.
func (n *Node) SetAttr(key string, value any) {
	if n.attrs == nil {
		n.attrs = make(map[string]any)
	}
	n.attrs[key] = value
}

// Attr returns a node attribute and whether it was set.
func (n *Node) Attr(key string) (value any, found bool) {
	value, found = n.attrs[key]
	return
}

// HasAttr reports whether the attribute is set.
func (n *Node) HasAttr(key string) bool {
	_, found := n.attrs[key]
	return found
}

// DeleteAttr removes a node attribute, if set.
func (n *Node) DeleteAttr(key string) {
	delete(n.attrs, key)
}

// Attrs returns the node's attribute keys, sorted.
func (n *Node) Attrs() []string {
	keys := make([]string, 0, len(n.attrs))
	for key := range n.attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// BoolAttr returns the attribute for key as a bool.
// ok reports whether the attribute was set to a bool.
func (n *Node) BoolAttr(key string) (value, ok bool) {
	value, ok = n.attrs[key].(bool)
	return
}

// IntAttr returns the attribute for key as an int.
// ok reports whether the attribute was set to an int.
func (n *Node) IntAttr(key string) (value int, ok bool) {
	value, ok = n.attrs[key].(int)
	return
}

// StringAttr returns the attribute for key as a string.
// ok reports whether the attribute was set to a string.
func (n *Node) StringAttr(key string) (value string, ok bool) {
	value, ok = n.attrs[key].(string)
	return
}

// GetNodeAttrOr returns the node attribute for key cast to T, or defaultValue if the
// attribute is not set. It panics if the attribute is set to a different type.
func GetNodeAttrOr[T any](n *Node, key string, defaultValue T) T {
	valueAny, found := n.Attr(key)
	if !found || valueAny == nil {
		return defaultValue
	}
	value, ok := valueAny.(T)
	if !ok {
		exceptions.Panicf("node %q attribute %q is a %T, requested as %T", n.name, key, valueAny, defaultValue)
	}
	return value
}

// DataIn returns the incoming data edges sorted by destination slot.
// Slots with no producer yet are simply absent from the result.
func (n *Node) DataIn() []*Edge {
	data := make([]*Edge, 0, len(n.inEdges))
	for _, e := range n.inEdges {
		if !e.IsControl() {
			data = append(data, e)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].DstSlot < data[j].DstSlot })
	return data
}

// ControlIn returns the incoming control edges sorted by source node id.
func (n *Node) ControlIn() []*Edge {
	ctrl := make([]*Edge, 0, len(n.inEdges))
	for _, e := range n.inEdges {
		if e.IsControl() {
			ctrl = append(ctrl, e)
		}
	}
	sort.Slice(ctrl, func(i, j int) bool { return ctrl[i].Src.id < ctrl[j].Src.id })
	return ctrl
}

// InEdges returns all incoming edges, data first (by destination slot) then control
// (by source id).
func (n *Node) InEdges() []*Edge {
	return append(n.DataIn(), n.ControlIn()...)
}

// DataOut returns the outgoing data edges sorted by source slot, then by destination
// node id and slot.
func (n *Node) DataOut() []*Edge {
	data := make([]*Edge, 0, len(n.outEdges))
	for _, e := range n.outEdges {
		if !e.IsControl() {
			data = append(data, e)
		}
	}
	sortOutEdges(data)
	return data
}

// ControlOut returns the outgoing control edges sorted by destination node id.
func (n *Node) ControlOut() []*Edge {
	ctrl := make([]*Edge, 0, len(n.outEdges))
	for _, e := range n.outEdges {
		if e.IsControl() {
			ctrl = append(ctrl, e)
		}
	}
	sort.Slice(ctrl, func(i, j int) bool { return ctrl[i].Dst.id < ctrl[j].Dst.id })
	return ctrl
}

// OutEdges returns all outgoing edges, data first then control, in the orders of
// DataOut and ControlOut.
func (n *Node) OutEdges() []*Edge {
	return append(n.DataOut(), n.ControlOut()...)
}

// NumIn returns the number of incoming edges, counting control edges.
func (n *Node) NumIn() int { return len(n.inEdges) }

// NumOut returns the number of outgoing edges, counting control edges.
func (n *Node) NumOut() int { return len(n.outEdges) }

// InDataEdge returns the edge feeding the given input slot, or nil if the slot has
// no producer.
func (n *Node) InDataEdge(slot int) *Edge {
	for _, e := range n.inEdges {
		if !e.IsControl() && e.DstSlot == slot {
			return e
		}
	}
	return nil
}

// NumDataIn returns the number of incoming data edges, which for a valid graph is
// the node's input arity.
func (n *Node) NumDataIn() int {
	count := 0
	for _, e := range n.inEdges {
		if !e.IsControl() {
			count++
		}
	}
	return count
}

func sortOutEdges(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SrcSlot != edges[j].SrcSlot {
			return edges[i].SrcSlot < edges[j].SrcSlot
		}
		if edges[i].Dst.id != edges[j].Dst.id {
			return edges[i].Dst.id < edges[j].Dst.id
		}
		return edges[i].DstSlot < edges[j].DstSlot
	})
}

// String returns a one-line description of the node: id, name, op, output dtypes and
// the names of its inputs.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	ins := make([]string, 0, len(n.inEdges))
	for _, e := range n.DataIn() {
		if e.Src.NumOutputs() > 1 {
			ins = append(ins, fmt.Sprintf("%s:%d", e.Src.name, e.SrcSlot))
		} else {
			ins = append(ins, e.Src.name)
		}
	}
	for _, e := range n.ControlIn() {
		ins = append(ins, "^"+e.Src.name)
	}
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "#%d %s = %s(%s)", n.id, n.name, n.op, strings.Join(ins, ", "))
	if len(n.outputs) > 0 {
		outs := make([]string, len(n.outputs))
		for i, slot := range n.outputs {
			outs[i] = slot.String()
		}
		_, _ = fmt.Fprintf(&sb, " -> [%s]", strings.Join(outs, ", "))
	}
	return sb.String()
}
