// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/support/sets"
)

// addFetchIdentities inserts an IdentityN pass-through over every fetched node,
// so the fetch name stays resolvable as a standalone node even if its producer
// is later absorbed into a cluster. The producer is renamed with
// FetchSourceSuffix and the new IdentityN takes over the fetch name, consuming
// every producer output slot-for-slot.
//
// A fetch target is skipped when its node is absent from the graph (earlier
// passes may have pruned it), its op is in disabledOps, it has no outputs, or
// any output is reference-typed.
//
// Returns the names of the identity nodes created.
func addFetchIdentities(g *graph.Graph, fetchNames, disabledOps sets.Set[string]) (sets.Set[string], error) {
	added := sets.Make[string]()
	for _, name := range sets.Sorted(fetchNames) {
		n := g.NodeByName(name)
		if n == nil {
			klog.V(2).Infof("Fetch target %q not found in graph %q, no identity inserted", name, g.Name())
			continue
		}
		if disabledOps.Has(n.Op()) || len(n.Outputs()) == 0 || n.HasRefOutput() {
			continue
		}
		if err := g.RenameNode(n, name+FetchSourceSuffix); err != nil {
			return nil, &StructuralError{Node: name, Err: errors.WithMessage(err, "renaming fetch producer")}
		}
		identity, err := g.AddNode(name, OpIdentityN, n.Outputs())
		if err != nil {
			return nil, &StructuralError{Node: name, Err: errors.WithMessage(err, "inserting fetch identity")}
		}
		for slot := range n.Outputs() {
			if _, err := g.AddEdge(n, slot, identity, slot); err != nil {
				return nil, &StructuralError{Node: name, Err: errors.WithMessage(err, "wiring fetch identity")}
			}
		}
		added.Insert(name)
		klog.V(3).Infof("Inserted fetch identity %q over producer %q", name, n.Name())
	}
	return added, nil
}
