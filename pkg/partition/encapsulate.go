// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"k8s.io/klog/v2"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/core/graphdef"
	"github.com/gomlx/offload/pkg/support/sets"
	"github.com/gomlx/offload/pkg/support/xslices"
)

// outputRef identifies one output slot of one node.
type outputRef struct {
	node graph.NodeId
	slot int
}

func clusterArgName(j int) string { return fmt.Sprintf("cluster_arg_%d", j) }

func clusterRetvalName(k int) string { return fmt.Sprintf("cluster_retval_%d", k) }

func clusterNodeName(registryId int) string { return fmt.Sprintf("offload_cluster_%d", registryId) }

// encapsulateClusters replaces every surviving cluster, in increasing id
// order, by one opaque OpCluster node. The cluster's body is serialized as a
// GraphDef, with OpClusterArg/OpClusterRetval nodes standing in for the
// boundary edges, and registered with clusters so a later compilation step can
// regenerate the sub-program from the registry id stamped on the node.
func encapsulateClusters(g *graph.Graph, clusters *ClusterManager, backendName string, configMap map[string]string) error {
	members := make(map[int][]*graph.Node)
	for _, n := range g.Nodes() {
		if cluster, found := n.IntAttr(AttrCluster); found {
			members[cluster] = append(members[cluster], n)
		}
	}
	for _, cluster := range xslices.SortedKeys(members) {
		if err := encapsulateOne(g, clusters, cluster, members[cluster], backendName, configMap); err != nil {
			return err
		}
	}
	if len(members) > 0 {
		klog.V(1).Infof("Encapsulated %d clusters in graph %q", len(members), g.Name())
	}
	return nil
}

// encapsulateOne rewrites one cluster. The member nodes are given in arena
// order and all carry AttrCluster == cluster.
//
// Boundary contract: arguments are the distinct external outputs feeding the
// cluster, indexed in order of first appearance when boundary input edges are
// sorted by (consumer name, input slot); results are the distinct member
// outputs with at least one external consumer, indexed by (producer name,
// output slot). Control dependencies crossing the boundary are re-pointed
// at the new node in both directions.
func encapsulateOne(g *graph.Graph, clusters *ClusterManager, cluster int, nodes []*graph.Node, backendName string, configMap map[string]string) error {
	memberIds := sets.Make[graph.NodeId](len(nodes))
	for _, n := range nodes {
		memberIds.Insert(n.Id())
	}

	var boundaryIn []*graph.Edge
	for _, n := range nodes {
		for _, e := range n.DataIn() {
			if !memberIds.Has(e.Src.Id()) {
				boundaryIn = append(boundaryIn, e)
			}
		}
	}
	slices.SortFunc(boundaryIn, func(a, b *graph.Edge) int {
		if c := strings.Compare(a.Dst.Name(), b.Dst.Name()); c != 0 {
			return c
		}
		return cmp.Compare(a.DstSlot, b.DstSlot)
	})
	argIndex := make(map[outputRef]int)
	var argSources []*graph.Edge // one representative edge per argument, in index order
	for _, e := range boundaryIn {
		ref := outputRef{node: e.Src.Id(), slot: e.SrcSlot}
		if _, found := argIndex[ref]; found {
			continue
		}
		argIndex[ref] = len(argSources)
		argSources = append(argSources, e)
	}

	var results []outputRef
	seen := sets.Make[outputRef]()
	for _, n := range nodes {
		for _, e := range n.DataOut() {
			if memberIds.Has(e.Dst.Id()) {
				continue
			}
			ref := outputRef{node: n.Id(), slot: e.SrcSlot}
			if !seen.Has(ref) {
				seen.Insert(ref)
				results = append(results, ref)
			}
		}
	}
	slices.SortFunc(results, func(a, b outputRef) int {
		if c := strings.Compare(g.NodeById(a.node).Name(), g.NodeById(b.node).Name()); c != 0 {
			return c
		}
		return cmp.Compare(a.slot, b.slot)
	})
	resultIndex := make(map[outputRef]int, len(results))
	for k, ref := range results {
		resultIndex[ref] = k
	}

	body, argDTypes, resultDTypes := clusterBody(g, cluster, nodes, memberIds, argSources, argIndex, results)
	if _, err := body.Build(); err != nil {
		return &EncapsulationError{Cluster: cluster, Err: err}
	}
	registryId := clusters.Register(body)

	subsumed := make([]string, len(nodes))
	for i, n := range nodes {
		subsumed[i] = n.Name()
	}
	slices.Sort(subsumed)

	outputs := make([]graph.OutputSlot, len(results))
	for k, ref := range results {
		outputs[k] = g.NodeById(ref.node).Output(ref.slot)
	}
	clusterNode, err := g.AddNode(clusterNodeName(registryId), OpCluster, outputs)
	if err != nil {
		return &EncapsulationError{Cluster: cluster, Err: err}
	}
	clusterNode.SetAttr(AttrClusterId, registryId)
	clusterNode.SetAttr(AttrBackend, backendName)
	clusterNode.SetAttr(AttrArgumentDTypes, argDTypes)
	clusterNode.SetAttr(AttrResultDTypes, resultDTypes)
	clusterNode.SetAttr(AttrSubsumed, subsumed)
	for key, value := range configMap {
		clusterNode.SetAttr(key, value)
	}

	for j, e := range argSources {
		if _, err := g.AddEdge(e.Src, e.SrcSlot, clusterNode, j); err != nil {
			return &EncapsulationError{Cluster: cluster, Err: err}
		}
	}
	for _, n := range nodes {
		for _, e := range n.DataOut() {
			if memberIds.Has(e.Dst.Id()) {
				continue
			}
			k := resultIndex[outputRef{node: n.Id(), slot: e.SrcSlot}]
			if err := g.MoveEdgeSrc(e, clusterNode, k); err != nil {
				return &EncapsulationError{Cluster: cluster, Err: err}
			}
		}
	}
	for _, n := range nodes {
		for _, e := range n.ControlIn() {
			if memberIds.Has(e.Src.Id()) {
				continue
			}
			if _, err := g.AddControlEdge(e.Src, clusterNode); err != nil {
				return &EncapsulationError{Cluster: cluster, Err: err}
			}
		}
		for _, e := range n.ControlOut() {
			if memberIds.Has(e.Dst.Id()) {
				continue
			}
			if _, err := g.AddControlEdge(clusterNode, e.Dst); err != nil {
				return &EncapsulationError{Cluster: cluster, Err: err}
			}
		}
	}

	// Member-internal edges and the now-mirrored boundary input edges die
	// with their nodes.
	for _, n := range nodes {
		g.RemoveNode(n)
	}
	klog.V(2).Infof("Encapsulated cluster %d of graph %q as %q: %d nodes, %d arguments, %d results",
		cluster, g.Name(), clusterNode.Name(), len(subsumed), len(argSources), len(results))
	return nil
}

// clusterBody serializes the cluster as a standalone GraphDef: one
// OpClusterArg node per argument, the member nodes with external references
// rewritten to the matching argument, and one OpClusterRetval node per result.
// The pass-private marking attributes are stripped from the member copies;
// everything else, AttrStaticInputs included, is carried over for the
// compilation step.
func clusterBody(g *graph.Graph, cluster int, nodes []*graph.Node, memberIds sets.Set[graph.NodeId],
	argSources []*graph.Edge, argIndex map[outputRef]int, results []outputRef) (body *graphdef.GraphDef, argDTypes, resultDTypes []string) {
	body = &graphdef.GraphDef{Name: fmt.Sprintf("%s_cluster_%d", g.Name(), cluster)}

	argDTypes = make([]string, len(argSources))
	for j, e := range argSources {
		dtype := e.Src.Output(e.SrcSlot).DType.String()
		argDTypes[j] = dtype
		body.Nodes = append(body.Nodes, graphdef.NodeDef{
			Name:    clusterArgName(j),
			Op:      OpClusterArg,
			Outputs: []graphdef.OutputDef{{DType: dtype}},
			Attrs:   map[string]any{AttrArgIndex: j},
		})
	}

	for _, n := range nodes {
		def := graphdef.NodeDef{Name: n.Name(), Op: n.Op()}
		for _, out := range n.Outputs() {
			def.Outputs = append(def.Outputs, graphdef.OutputDef{DType: out.DType.String(), Ref: out.Ref})
		}
		for _, e := range n.DataIn() {
			if memberIds.Has(e.Src.Id()) {
				def.Inputs = append(def.Inputs, graphdef.FormatInput(e.Src.Name(), e.SrcSlot))
			} else {
				j := argIndex[outputRef{node: e.Src.Id(), slot: e.SrcSlot}]
				def.Inputs = append(def.Inputs, clusterArgName(j))
			}
		}
		for _, e := range n.ControlIn() {
			if memberIds.Has(e.Src.Id()) {
				def.Inputs = append(def.Inputs, graphdef.FormatInput(e.Src.Name(), graph.ControlSlot))
			}
		}
		for _, key := range n.Attrs() {
			if key == AttrMarkedForClustering || key == AttrCluster {
				continue
			}
			if def.Attrs == nil {
				def.Attrs = make(map[string]any)
			}
			def.Attrs[key], _ = n.Attr(key)
		}
		body.Nodes = append(body.Nodes, def)
	}

	resultDTypes = make([]string, len(results))
	for k, ref := range results {
		src := g.NodeById(ref.node)
		resultDTypes[k] = src.Output(ref.slot).DType.String()
		body.Nodes = append(body.Nodes, graphdef.NodeDef{
			Name:   clusterRetvalName(k),
			Op:     OpClusterRetval,
			Inputs: []string{graphdef.FormatInput(src.Name(), ref.slot)},
			Attrs:  map[string]any{AttrArgIndex: k},
		})
	}
	return body, argDTypes, resultDTypes
}
