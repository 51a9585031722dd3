// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
)

// assignClusters greedily groups the nodes marked for clustering: every edge
// whose endpoints are both marked proposes a merge of their clusters, accepted
// whenever the contracted graph (clusters as single vertices) stays acyclic.
// Sweeps repeat until a full pass proposes no accepted merge, since an
// accepted merge can collapse the alternate path that blocked an earlier one.
//
// Surviving clusters are then numbered densely from 0, in order of first
// appearance over the node arena, and recorded on members as AttrCluster.
func assignClusters(g *graph.Graph) error {
	ci, err := newContractionIndex(g)
	if err != nil {
		return &StructuralError{Err: err}
	}

	// Union-find over node ids. The surviving root of a merge is the edge
	// source's root, mirroring the surviving contraction vertex.
	parent := make(map[graph.NodeId]graph.NodeId, g.NumNodes())
	for _, n := range g.Nodes() {
		parent[n.Id()] = n.Id()
	}
	find := func(id graph.NodeId) graph.NodeId {
		for parent[id] != id {
			parent[id] = parent[parent[id]]
			id = parent[id]
		}
		return id
	}

	numMarked := 0
	for _, n := range g.Nodes() {
		if isMarkedForClustering(n) {
			numMarked++
		}
	}

	merges := 0
	for changed := true; changed; {
		changed = false
		for _, n := range g.Nodes() {
			if !isMarkedForClustering(n) {
				continue
			}
			for _, e := range n.OutEdges() {
				if !isMarkedForClustering(e.Dst) {
					continue
				}
				rootSrc, rootDst := find(n.Id()), find(e.Dst.Id())
				if rootSrc == rootDst {
					continue
				}
				if !ci.ContractEdge(int(rootSrc), int(rootDst)) {
					continue
				}
				parent[rootDst] = rootSrc
				merges++
				changed = true
			}
		}
	}

	numClusters := 0
	clusterOfRoot := make(map[graph.NodeId]int)
	for _, n := range g.Nodes() {
		if !isMarkedForClustering(n) {
			continue
		}
		root := find(n.Id())
		cluster, found := clusterOfRoot[root]
		if !found {
			cluster = numClusters
			numClusters++
			clusterOfRoot[root] = cluster
		}
		n.SetAttr(AttrCluster, cluster)
	}
	klog.V(1).Infof("Assigned %d clusters over %d marked nodes (%d merges) in graph %q",
		numClusters, numMarked, merges, g.Name())
	return nil
}

func isMarkedForClustering(n *graph.Node) bool {
	marked, _ := n.BoolAttr(AttrMarkedForClustering)
	return marked
}
