// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/offload/pkg/core/graph"
)

func buildIndex(t *testing.T, specs ...nodeSpec) (*graph.Graph, *contractionIndex) {
	g := buildGraph(t, "index", specs...)
	index, err := newContractionIndex(g)
	require.NoError(t, err)
	return g, index
}

// checkRanks verifies the ordering invariant: every edge goes from a lower rank
// to a higher one.
func checkRanks(t *testing.T, index *contractionIndex) {
	t.Helper()
	for v, successors := range index.out {
		for w := range successors {
			assert.Less(t, index.rank[v], index.rank[w], "edge %d->%d violates the order", v, w)
		}
	}
}

func TestInsertEdgeReorders(t *testing.T) {
	g, index := buildIndex(t,
		nodeSpec{name: "a", op: "X", outputs: 1},
		nodeSpec{name: "b", op: "X", inputs: []string{"a"}, outputs: 1},
		nodeSpec{name: "c", op: "X", inputs: []string{"a"}, outputs: 1},
		nodeSpec{name: "d", op: "X", inputs: []string{"b", "c"}, outputs: 1},
	)
	checkRanks(t, index)
	idOf := func(name string) int { return int(g.NodeByName(name).Id()) }

	// c comes after b in creation order, so c->b needs a local reorder.
	assert.True(t, index.InsertEdge(idOf("c"), idOf("b")))
	checkRanks(t, index)

	// Existing edges and self edges are no-ops.
	assert.True(t, index.InsertEdge(idOf("a"), idOf("b")))
	assert.False(t, index.InsertEdge(idOf("d"), idOf("d")))

	// d->a would close a cycle; the index stays unchanged.
	assert.False(t, index.InsertEdge(idOf("d"), idOf("a")))
	assert.False(t, index.out[idOf("d")].Has(idOf("a")))
	checkRanks(t, index)
}

func TestNewContractionIndexRejectsCycle(t *testing.T) {
	g := buildGraph(t, "cyclic",
		nodeSpec{name: "a", op: "X", inputs: []string{"b"}, outputs: 1},
		nodeSpec{name: "b", op: "X", inputs: []string{"a"}, outputs: 1},
	)
	_, err := newContractionIndex(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestContractEdgeMerges(t *testing.T) {
	g, index := buildIndex(t,
		nodeSpec{name: "a", op: "X", outputs: 1},
		nodeSpec{name: "b", op: "X", inputs: []string{"a"}, outputs: 1},
		nodeSpec{name: "c", op: "X", inputs: []string{"a", "b"}, outputs: 1},
	)
	idOf := func(name string) int { return int(g.NodeByName(name).Id()) }
	a, b, c := idOf("a"), idOf("b"), idOf("c")

	// The direct edge is the only a->b path, so the contraction is legal; b's
	// edges move over to a.
	require.True(t, index.ContractEdge(a, b))
	checkRanks(t, index)
	_, alive := index.rank[b]
	assert.False(t, alive)
	assert.True(t, index.out[a].Has(c))

	require.True(t, index.ContractEdge(a, c))
	assert.Len(t, index.rank, 1)
}

func TestContractEdgeRejectsAlternatePath(t *testing.T) {
	g, index := buildIndex(t,
		nodeSpec{name: "a", op: "X", outputs: 1},
		nodeSpec{name: "b", op: "X", inputs: []string{"a"}, outputs: 1},
		nodeSpec{name: "c", op: "X", inputs: []string{"a", "b"}, outputs: 1},
	)
	idOf := func(name string) int { return int(g.NodeByName(name).Id()) }
	a, b, c := idOf("a"), idOf("b"), idOf("c")

	// a->b->c survives the removal of the direct edge, so contracting a,c would
	// put b inside the merged vertex's cycle. The edge must be restored.
	require.False(t, index.ContractEdge(a, c))
	assert.True(t, index.out[a].Has(c))
	checkRanks(t, index)

	// Contracting the chain first collapses the alternate path into the direct
	// edge, unblocking the merge.
	require.True(t, index.ContractEdge(a, b))
	require.True(t, index.ContractEdge(a, c))
	assert.Len(t, index.rank, 1)
}
