// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"strings"

	"github.com/gomlx/offload/pkg/core/graphdef"
	"github.com/gomlx/offload/pkg/support/sets"
)

// Item is one unit of work for the Optimizer: the serialized graph plus the
// host's execution metadata, which determines the nodes the pass must leave
// addressable.
type Item struct {
	// Id identifies the item in logs.
	Id string

	// GraphDef is the serialized graph to partition. Optimize does not modify it.
	GraphDef *graphdef.GraphDef

	// Feeds are names of nodes whose outputs the host replaces at execution time.
	Feeds []string

	// Fetches are the outputs the host reads back, as "node" or "node:k".
	Fetches []string

	// KeepOps are nodes the host needs untouched.
	KeepOps []string

	// InitOps are initialization targets run before the main computation.
	InitOps []string
}

// fetchNodes returns the node names the fetches refer to, ":k" suffixes
// stripped.
func (item *Item) fetchNodes() sets.Set[string] {
	names := sets.Make[string](len(item.Fetches))
	for _, fetch := range item.Fetches {
		name, _, _ := strings.Cut(fetch, ":")
		if name != "" {
			names.Insert(name)
		}
	}
	return names
}

// preservationSet resolves the names that must survive as standalone nodes:
// feeds, kept nodes, initialization targets and fetch targets.
func (item *Item) preservationSet() sets.Set[string] {
	preserved := sets.FromSlice(item.Feeds)
	preserved.Insert(item.KeepOps...)
	preserved.Insert(item.InitOps...)
	return preserved.Union(item.fetchNodes())
}
