// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package partition implements the offload partitioning pass: it finds the
// subgraphs of a computation graph that the current backend can execute and
// replaces each with a single opaque node, publishing the extracted bodies to
// a cluster registry for a later compilation step.
//
// The pass runs five phases over one graph: resolve the preservation set and
// insert fetch identities, mark backend-supported nodes, group marked nodes
// into clusters keeping the contracted graph acyclic, dissolve unprofitable
// clusters, and encapsulate the survivors. Optimizer.Optimize is the entry
// point.
package partition

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/gomlx/offload/backends"
	"github.com/gomlx/offload/pkg/core/graphdef"
	"github.com/gomlx/offload/pkg/costs"
	"github.com/gomlx/offload/pkg/opcheck"
	"github.com/gomlx/offload/pkg/support/sets"
	"github.com/gomlx/offload/pkg/support/xslices"
)

// Optimizer runs the partitioning pipeline over serialized graphs.
//
// An Optimizer may be shared by concurrent Optimize calls on different items:
// all per-run state lives on the graph being rewritten, and the only shared
// mutable state, the run-index counter and the cluster registry, is guarded
// by mutexes.
type Optimizer struct {
	Options Options

	// Estimator, when set, is consulted once per run and its prediction
	// logged. Advisory only: it gates no partitioning decision.
	Estimator costs.Estimator

	// Oracle overrides the capability oracle. When nil, Optimize uses
	// opcheck over the current backend's capabilities.
	Oracle Oracle

	// Clusters is the registry encapsulated bodies are published to.
	// When nil, the process-wide Clusters registry is used.
	Clusters *ClusterManager

	configMap map[string]string
}

// NewOptimizer returns an Optimizer publishing to the process-wide cluster
// registry.
func NewOptimizer(options Options) *Optimizer {
	return &Optimizer{Options: options, Clusters: Clusters}
}

// Init records the host's pass-configuration parameters. Each key is prefixed
// with ConfigPrefix and later stamped verbatim on every encapsulated node.
func (o *Optimizer) Init(params map[string]string) {
	if o.configMap == nil {
		o.configMap = make(map[string]string, len(params))
	}
	for _, key := range xslices.SortedKeys(params) {
		prefixed := ConfigPrefix + key
		o.configMap[prefixed] = params[key]
		klog.V(3).Infof("Optimizer config attribute %s=%s", prefixed, params[key])
	}
}

var (
	muSerialCounter sync.Mutex
	serialCounter   int
)

// freshIndex returns a process-unique run index, keying the diagnostic dumps
// of concurrent runs apart.
func freshIndex() int {
	muSerialCounter.Lock()
	defer muSerialCounter.Unlock()
	idx := serialCounter
	serialCounter++
	return idx
}

// Optimize runs the pipeline over item and returns the rewritten graph.
//
// Fast path: when partitioning is disabled or the graph already carries the
// AttrProcessed marker from a previous run, previously registered cluster
// bodies are evicted and the input is returned unchanged.
//
// Failures are one of *GraphConstructionError, *BackendResolutionError,
// *StructuralError or *EncapsulationError. Nothing is retried internally; the
// caller decides whether to retry on a fresh copy.
func (o *Optimizer) Optimize(item *Item) (*graphdef.GraphDef, error) {
	if item == nil || item.GraphDef == nil {
		exceptions.Panicf("Optimize requires an Item with a GraphDef, got %+v", item)
	}
	if klog.V(5).Enabled() {
		klog.Infof("Optimizing item %q", item.Id)
	}
	g, err := item.GraphDef.Build()
	if err != nil {
		return nil, &GraphConstructionError{Graph: item.GraphDef.Name, Err: err}
	}
	idx := freshIndex()

	processedAny, _ := g.Attr(AttrProcessed)
	processed, _ := processedAny.(bool)
	if !o.Options.Enabled || processed {
		if !o.Options.Enabled && !processed {
			klog.Info("Offload partitioning is available but disabled.")
		}
		if klog.V(1).Enabled() {
			reason := "partitioning disabled"
			if processed {
				reason = "already processed"
			}
			klog.Infof("Skipping graph %q (%s), evicting registered clusters", g.Name(), reason)
		}
		o.clusters().EvictAll()
		return item.GraphDef, nil
	}

	backend, err := backends.Current()
	if err != nil {
		return nil, err
	}
	if o.Estimator != nil {
		if prediction, predictErr := o.Estimator.Predict(g); predictErr != nil {
			klog.Errorf("Cost estimation failed for graph %q: %v", g.Name(), predictErr)
		} else if klog.V(1).Enabled() {
			klog.Infof("Estimated cost of graph %q: compute %s, memory %s",
				g.Name(), prediction.Compute, humanize.IBytes(prediction.Memory))
		}
	}

	preserved := item.preservationSet()
	disabledOps := sets.FromSlice(o.Options.DisabledOps)
	identities, err := addFetchIdentities(g, item.fetchNodes(), disabledOps)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Preserving %d nodes (%d fetch identities) in graph %q",
		len(preserved), len(identities), g.Name())
	dumpGraph(g, o.Options.DumpDir, StageUnmarked, idx)

	oracle := o.Oracle
	if oracle == nil {
		oracle = opcheck.New(backend, o.Options.DisabledOps...)
	}
	markForClustering(g, oracle, preserved)
	dumpGraph(g, o.Options.DumpDir, StageMarked, idx)

	if err := assignClusters(g); err != nil {
		return nil, err
	}
	dumpGraph(g, o.Options.DumpDir, StageClustered, idx)

	deassignClusters(g, preserved, o.Options.MinClusterSize)
	dumpGraph(g, o.Options.DumpDir, StageDeclustered, idx)

	if err := encapsulateClusters(g, o.clusters(), backend.Name(), o.configMap); err != nil {
		return nil, err
	}
	dumpGraph(g, o.Options.DumpDir, StageEncapsulated, idx)

	g.SetAttr(AttrProcessed, true)
	out, err := graphdef.Export(g)
	if err != nil {
		return nil, &StructuralError{Err: err}
	}
	return out, nil
}

func (o *Optimizer) clusters() *ClusterManager {
	if o.Clusters != nil {
		return o.Clusters
	}
	return Clusters
}
