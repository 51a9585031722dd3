// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/core/graphdef"
)

// Stage identifies the pipeline phase after which a diagnostic dump is taken.
type Stage int

//go:generate go tool enumer -type=Stage -trimprefix=Stage -transform=snake -output=gen_stage_enumer.go dump.go

const (
	// StageUnmarked is the input graph, after fetch identities were inserted.
	StageUnmarked Stage = iota

	// StageMarked is the graph with capability marks applied.
	StageMarked

	// StageClustered is the graph with cluster assignments.
	StageClustered

	// StageDeclustered is the graph after unprofitable clusters dissolved.
	StageDeclustered

	// StageEncapsulated is the final graph with clusters replaced by single nodes.
	StageEncapsulated
)

// dumpGraph writes the graph as "<stage>_<runIdx>.dot" under dir, nodes colored
// by cluster. It does nothing when dir is empty. Dump failures are logged and
// swallowed: diagnostics never fail the pipeline.
func dumpGraph(g *graph.Graph, dir string, stage Stage, runIdx int) {
	if dir == "" {
		return
	}
	dot := graphdef.ToDOT(g, clusterGroups(g))
	path := filepath.Join(dir, fmt.Sprintf("%s_%d.dot", stage, runIdx))
	tmpPath := fmt.Sprintf("%s_uuid_%s", path, uuid.NewString())
	if err := os.WriteFile(tmpPath, []byte(dot), 0644); err != nil {
		klog.Errorf("Cannot dump %s graph to %s: %v", stage, path, err)
		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		klog.Errorf("Cannot move %s graph dump into place at %s: %v", stage, path, err)
		_ = os.Remove(tmpPath)
		return
	}
	if klog.V(2).Enabled() {
		klog.Infof("Dumped %s graph of run %d to %s", stage, runIdx, path)
	}
}

// clusterGroups maps each cluster-assigned node to its cluster, for coloring.
func clusterGroups(g *graph.Graph) map[graph.NodeId]int {
	var groups map[graph.NodeId]int
	for _, n := range g.Nodes() {
		if cluster, found := n.IntAttr(AttrCluster); found {
			if groups == nil {
				groups = make(map[graph.NodeId]int)
			}
			groups[n.Id()] = cluster
		}
	}
	return groups
}
