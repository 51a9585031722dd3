// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphdef

import (
	"fmt"
	"strings"

	"github.com/gomlx/offload/pkg/core/graph"
)

// dotPalette holds the fill colors cycled through for node groups.
var dotPalette = []string{
	"lightblue", "lightyellow", "lightpink", "palegreen", "plum",
	"lightsalmon", "paleturquoise", "khaki", "lightcyan", "thistle",
}

// ToDOT renders the graph in Graphviz DOT form, nodes in id order.
//
// groups optionally assigns nodes to visual groups: grouped nodes are filled with a
// color cycled from a fixed palette, so nodes of the same group share a color. Pass
// nil for an uncolored rendering. Control edges are dashed.
func ToDOT(g *graph.Graph, groups map[graph.NodeId]int) string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "digraph %s {\n", dotQuote(g.Name()))
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, fontsize=10];\n")
	for _, n := range g.Nodes() {
		label := fmt.Sprintf("%s\\n%s", dotEscape(n.Name()), dotEscape(n.Op()))
		if group, found := groups[n.Id()]; found {
			color := dotPalette[group%len(dotPalette)]
			_, _ = fmt.Fprintf(&sb, "  %s [label=\"%s\", style=filled, fillcolor=%s];\n",
				dotQuote(n.Name()), label, color)
		} else {
			_, _ = fmt.Fprintf(&sb, "  %s [label=\"%s\"];\n", dotQuote(n.Name()), label)
		}
	}
	for _, n := range g.Nodes() {
		for _, e := range n.DataOut() {
			if e.Src.NumOutputs() > 1 {
				_, _ = fmt.Fprintf(&sb, "  %s -> %s [label=\":%d\"];\n",
					dotQuote(e.Src.Name()), dotQuote(e.Dst.Name()), e.SrcSlot)
			} else {
				_, _ = fmt.Fprintf(&sb, "  %s -> %s;\n", dotQuote(e.Src.Name()), dotQuote(e.Dst.Name()))
			}
		}
		for _, e := range n.ControlOut() {
			_, _ = fmt.Fprintf(&sb, "  %s -> %s [style=dashed];\n", dotQuote(e.Src.Name()), dotQuote(e.Dst.Name()))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func dotQuote(s string) string {
	return "\"" + dotEscape(s) + "\""
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}
