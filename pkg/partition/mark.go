// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/support/sets"
)

// Oracle decides which nodes of a graph a backend can execute.
//
// It is treated as a pure function of the graph: the pipeline queries it once
// per run, before marking. The default oracle is opcheck.New over the current
// backend's capabilities.
type Oracle interface {
	SupportedNodes(g *graph.Graph) sets.Set[graph.NodeId]
}

// markForClustering tags every oracle-supported node that is not preserved
// with AttrMarkedForClustering and applies the per-op attribute hints from
// attributeSetters. It only mutates node attributes, never topology, and is
// idempotent: marking an already marked graph leaves the same attribute state.
//
// Returns the number of nodes marked.
func markForClustering(g *graph.Graph, oracle Oracle, preserved sets.Set[string]) int {
	supported := oracle.SupportedNodes(g)
	marked := 0
	for _, n := range g.Nodes() {
		if !supported.Has(n.Id()) || preserved.Has(n.Name()) {
			continue
		}
		n.SetAttr(AttrMarkedForClustering, true)
		if setter, found := attributeSetters[n.Op()]; found {
			setter(n)
		}
		marked++
		if klog.V(3).Enabled() {
			klog.Infof("Marked for clustering: %s", n)
		}
	}
	klog.V(1).Infof("Marked %d of %d nodes in graph %q for clustering", marked, g.NumNodes(), g.Name())
	return marked
}

// attributeSetters holds per-op hints applied when an op is marked. Most ops
// record which input slots must be constant-folded before offloading
// (AttrStaticInputs), e.g. shapes, axes and padding specifications.
var attributeSetters = map[string]func(*graph.Node){
	"ArgMax":              setStaticInputs(1),
	"ArgMin":              setStaticInputs(1),
	"Concat":              setStaticInputs(0),
	"Conv2DBackpropInput": setStaticInputs(0),
	"ExpandDims":          setStaticInputs(1),
	"Fill":                setStaticInputs(0),
	"GatherV2":            setStaticInputs(2),
	"Max":                 setStaticInputs(1),
	"Mean":                setStaticInputs(1),
	"Min":                 setStaticInputs(1),
	"Pad":                 setStaticInputs(1),
	"Prod":                setStaticInputs(1),
	"Reshape":             setStaticInputs(1),
	"Slice":               setStaticInputs(1, 2),
	"Split":               setStaticInputs(0),
	"SplitV":              setStaticInputs(1, 2),
	"StridedSlice":        setStaticInputs(1, 2, 3),
	"Sum":                 setStaticInputs(1),
	"Tile":                setStaticInputs(1),
	"Transpose":           setStaticInputs(1),

	// ConcatV2 takes its axis last, after a variadic list of tensors.
	"ConcatV2": func(n *graph.Node) {
		n.SetAttr(AttrStaticInputs, []int{n.NumDataIn() - 1})
	},
}

func setStaticInputs(slots ...int) func(*graph.Node) {
	return func(n *graph.Node) {
		n.SetAttr(AttrStaticInputs, slots)
	}
}
