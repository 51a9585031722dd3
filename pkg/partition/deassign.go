// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/support/sets"
	"github.com/gomlx/offload/pkg/support/xslices"
)

// trivialOps do not count toward a cluster's minimum size: offloading them
// on their own saves nothing.
var trivialOps = sets.MakeWith("Const", "Identity", OpIdentityN, "NoOp")

// deassignClusters dissolves every cluster that fails the minimum-benefit
// policy: fewer than minClusterSize non-trivial members, or every member in
// the preserved set. Members of dissolved clusters lose both the cluster
// assignment and the clustering mark, returning to ordinary status for the
// rest of the pass.
//
// Only whole clusters dissolve, so surviving clusters keep their membership
// and ids untouched. Id gaps are left as-is.
//
// Returns the number of clusters dissolved.
func deassignClusters(g *graph.Graph, preserved sets.Set[string], minClusterSize int) int {
	members := make(map[int][]*graph.Node)
	for _, n := range g.Nodes() {
		if cluster, found := n.IntAttr(AttrCluster); found {
			members[cluster] = append(members[cluster], n)
		}
	}

	dissolved := 0
	for _, cluster := range xslices.SortedKeys(members) {
		nodes := members[cluster]
		nonTrivial := 0
		allPreserved := true
		for _, n := range nodes {
			if !trivialOps.Has(n.Op()) {
				nonTrivial++
			}
			if !preserved.Has(n.Name()) {
				allPreserved = false
			}
		}
		if nonTrivial >= minClusterSize && !allPreserved {
			continue
		}
		for _, n := range nodes {
			n.DeleteAttr(AttrCluster)
			n.DeleteAttr(AttrMarkedForClustering)
		}
		dissolved++
		klog.V(2).Infof("Dissolved cluster %d in graph %q: %d nodes, %d non-trivial",
			cluster, g.Name(), len(nodes), nonTrivial)
	}
	klog.V(1).Infof("Dissolved %d of %d clusters in graph %q", dissolved, len(members), g.Name())
	return dissolved
}
