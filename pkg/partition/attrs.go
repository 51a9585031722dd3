// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

// ConfigPrefix is prepended to every key of the host configuration map; the
// prefixed entries are stamped verbatim onto each encapsulated cluster node.
const ConfigPrefix = "_offload_"

// Node attributes written by the phases.
const (
	// AttrMarkedForClustering (bool) tags nodes the capability oracle accepted.
	AttrMarkedForClustering = "_offload_marked_for_clustering"

	// AttrCluster (int) is the cluster a node was assigned to.
	AttrCluster = "_offload_cluster"

	// AttrStaticInputs ([]int) lists input slots a backend needs as compile-time
	// constants. Written by the per-op attribute setters during marking.
	AttrStaticInputs = "_offload_static_inputs"
)

// AttrProcessed (bool) is the graph attribute stamped after a successful run; a
// graph carrying it is never partitioned again.
const AttrProcessed = "_offload_processed"

// Attributes of an encapsulated cluster node.
const (
	// AttrClusterId (int) is the registry id of the cluster body.
	AttrClusterId = "_offload_cluster_id"

	// AttrBackend (string) names the backend the cluster was partitioned for.
	AttrBackend = "_offload_backend"

	// AttrArgumentDTypes ([]string) lists the dtype of each cluster input, in
	// input-slot order.
	AttrArgumentDTypes = "_offload_targuments"

	// AttrResultDTypes ([]string) lists the dtype of each cluster output, in
	// output-slot order.
	AttrResultDTypes = "_offload_tresults"

	// AttrSubsumed ([]string) lists the names of the nodes the cluster replaced,
	// sorted.
	AttrSubsumed = "_offload_subsumed"
)

// Operation types introduced by the pass.
const (
	// OpCluster is the opaque node standing in for an encapsulated cluster.
	OpCluster = "_OffloadCluster"

	// OpClusterArg feeds one external input into a cluster body.
	OpClusterArg = "_ClusterArg"

	// OpClusterRetval exposes one member output from a cluster body.
	OpClusterRetval = "_ClusterRetval"

	// OpIdentityN is the pass-through inserted over fetched nodes.
	OpIdentityN = "IdentityN"
)

// AttrArgIndex (int) is set on OpClusterArg and OpClusterRetval body nodes with
// their input or output position.
const AttrArgIndex = "index"

// FetchSourceSuffix is appended to a fetched node's name when the pass-through
// identity takes over the original name.
const FetchSourceSuffix = "_offload_src"
