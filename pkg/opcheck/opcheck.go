// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package opcheck decides which nodes of a graph a backend can execute.
//
// A Checker combines a backend's capability table with a host-side disabled-op
// list. The answer for a node depends only on the graph and that configuration, so
// repeated queries over an unchanged graph give identical results.
package opcheck

import (
	"github.com/gomlx/offload/backends"
	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/support/sets"
)

// Checker is the capability oracle consulted when marking nodes for clustering.
type Checker struct {
	backend  backends.Backend
	caps     backends.Capabilities
	disabled sets.Set[string]
}

// New creates a Checker for the given backend. Nodes whose operation type is in
// disabledOps are reported unsupported regardless of the backend's capabilities.
func New(backend backends.Backend, disabledOps ...string) *Checker {
	return &Checker{
		backend:  backend,
		caps:     backend.Capabilities(),
		disabled: sets.FromSlice(disabledOps),
	}
}

// Backend returns the backend this Checker answers for.
func (c *Checker) Backend() backends.Backend { return c.backend }

// Supported reports whether the backend can execute the node: its operation type
// is supported and not disabled, it has no reference-typed output, and every
// output and data-input dtype is supported.
func (c *Checker) Supported(n *graph.Node) bool {
	if c.disabled.Has(n.Op()) || !c.caps.SupportsOp(n.Op()) {
		return false
	}
	if n.HasRefOutput() {
		return false
	}
	for _, slot := range n.Outputs() {
		if !c.caps.SupportsDType(slot.DType) {
			return false
		}
	}
	for _, e := range n.DataIn() {
		in := e.Src.Output(e.SrcSlot)
		if in.Ref || !c.caps.SupportsDType(in.DType) {
			return false
		}
	}
	return true
}

// SupportedNodes returns the ids of all nodes of the graph the backend can
// execute.
func (c *Checker) SupportedNodes(g *graph.Graph) sets.Set[graph.NodeId] {
	supported := sets.Make[graph.NodeId]()
	for _, n := range g.Nodes() {
		if c.Supported(n) {
			supported.Insert(n.Id())
		}
	}
	return supported
}
