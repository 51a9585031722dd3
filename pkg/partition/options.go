// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"os"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Options configure one Optimizer. The zero value disables the pass; start from
// DefaultOptions or FromEnv.
type Options struct {
	// Enabled gates the whole pass: when false, Optimize returns its input
	// unchanged (and evicts previously registered cluster bodies).
	Enabled bool

	// MinClusterSize is the number of non-trivial nodes (see deassignClusters) a
	// cluster needs to survive deassignment.
	MinClusterSize int

	// DisabledOps are operation types never offloaded, regardless of backend
	// capabilities. Fetched nodes of these types also get no pass-through
	// identity.
	DisabledOps []string

	// DumpDir, when set, receives a Graphviz dump of the graph after each phase.
	DumpDir string
}

// Environment variables read by FromEnv.
const (
	// OFFLOAD_DISABLE disables the pass when its value starts with '1'.
	OFFLOAD_DISABLE = "OFFLOAD_DISABLE"

	// OFFLOAD_DUMP_GRAPHS names the directory receiving per-phase Graphviz dumps.
	OFFLOAD_DUMP_GRAPHS = "OFFLOAD_DUMP_GRAPHS"

	// OFFLOAD_MIN_NONTRIVIAL_NODES overrides Options.MinClusterSize.
	OFFLOAD_MIN_NONTRIVIAL_NODES = "OFFLOAD_MIN_NONTRIVIAL_NODES"

	// OFFLOAD_DISABLED_OPS is a comma-separated list of operation types to add to
	// Options.DisabledOps.
	OFFLOAD_DISABLED_OPS = "OFFLOAD_DISABLED_OPS"
)

// DefaultOptions returns the enabled defaults: clusters need two non-trivial
// nodes, nothing disabled, no dumps.
func DefaultOptions() Options {
	return Options{
		Enabled:        true,
		MinClusterSize: 2,
	}
}

// FromEnv returns DefaultOptions overridden from the environment. The
// environment is read here and nowhere else: the rest of the pipeline only sees
// the explicit Options value.
func FromEnv() Options {
	options := DefaultOptions()
	if value, found := os.LookupEnv(OFFLOAD_DISABLE); found && strings.HasPrefix(value, "1") {
		options.Enabled = false
	}
	options.DumpDir = os.Getenv(OFFLOAD_DUMP_GRAPHS)
	if value, found := os.LookupEnv(OFFLOAD_MIN_NONTRIVIAL_NODES); found {
		minSize, err := strconv.Atoi(value)
		if err != nil || minSize < 0 {
			klog.Errorf("Ignoring invalid %s=%q", OFFLOAD_MIN_NONTRIVIAL_NODES, value)
		} else {
			options.MinClusterSize = minSize
		}
	}
	if value := os.Getenv(OFFLOAD_DISABLED_OPS); value != "" {
		for _, op := range strings.Split(value, ",") {
			if op = strings.TrimSpace(op); op != "" {
				options.DisabledOps = append(options.DisabledOps, op)
			}
		}
	}
	return options
}
