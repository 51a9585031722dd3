// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"cmp"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"

	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/support/sets"
)

// contractionIndex maintains a topological order of the cluster-contraction
// graph under two mutations: inserting an edge and contracting an edge
// (merging its endpoints). Both refuse changes that would introduce a cycle,
// so the index always represents a DAG.
//
// The order is kept as a unique integer rank per vertex, with every edge going
// from lower to higher rank. Insertions that violate the order trigger a local
// reorder of the affected rank window only (Pearce-Kelly), which keeps the
// amortized cost far below a full topological re-sort per merge.
type contractionIndex struct {
	rank     map[int]int
	out, in  map[int]sets.Set[int]
	nextRank int
}

// newContractionIndex builds the index over g, one vertex per node, one edge
// per distinct (src, dst) pair of data or control edges. Fails if g is cyclic.
func newContractionIndex(g *graph.Graph) (*contractionIndex, error) {
	numNodes := g.NumNodes()
	ci := &contractionIndex{
		rank: make(map[int]int, numNodes),
		out:  make(map[int]sets.Set[int], numNodes),
		in:   make(map[int]sets.Set[int], numNodes),
	}
	for _, n := range g.Nodes() {
		ci.addVertex(int(n.Id()))
	}
	for _, n := range g.Nodes() {
		for _, e := range n.OutEdges() {
			if !ci.InsertEdge(int(n.Id()), int(e.Dst.Id())) {
				return nil, errors.Errorf("graph %q has a cycle through %q and %q", g.Name(), n.Name(), e.Dst.Name())
			}
		}
	}
	return ci, nil
}

func (ci *contractionIndex) addVertex(v int) {
	ci.rank[v] = ci.nextRank
	ci.nextRank++
	ci.out[v] = sets.Make[int]()
	ci.in[v] = sets.Make[int]()
}

func (ci *contractionIndex) assertVertex(v int) {
	if _, found := ci.rank[v]; !found {
		exceptions.Panicf("vertex %d is not (or no longer) in the contraction index", v)
	}
}

// InsertEdge adds the edge x->y, reordering ranks locally if needed. It
// returns false, leaving the index unchanged, if the edge would create a
// cycle. Inserting an existing edge is a no-op returning true.
func (ci *contractionIndex) InsertEdge(x, y int) bool {
	ci.assertVertex(x)
	ci.assertVertex(y)
	if x == y {
		return false
	}
	if ci.out[x].Has(y) {
		return true
	}
	if ci.rank[x] < ci.rank[y] {
		ci.addEdge(x, y)
		return true
	}
	// The order is violated: every vertex in the rank window
	// [rank[y], rank[x]] that is forward-reachable from y must move after
	// every one that reaches x backward. If x itself is forward-reachable
	// from y the edge closes a cycle.
	forward, acyclic := ci.forwardSearch(y, x)
	if !acyclic {
		return false
	}
	ci.reorder(ci.backwardSearch(x, y), forward)
	ci.addEdge(x, y)
	return true
}

// ContractEdge merges vertex b into a, keeping a as the surviving vertex. The
// merge is rejected, returning false with the index unchanged, if b remains
// reachable from a once their direct edge is set aside: contracting would then
// close a cycle through the alternate path. On success b's remaining edges are
// re-pointed at a and b disappears from the index.
func (ci *contractionIndex) ContractEdge(a, b int) bool {
	ci.assertVertex(a)
	ci.assertVertex(b)
	if a == b {
		return false
	}
	hadEdge := ci.out[a].Has(b)
	if hadEdge {
		ci.removeEdge(a, b)
	}
	if ci.reachable(a, b) {
		if hadEdge {
			ci.addEdge(a, b)
		}
		return false
	}
	// With no a~>b path left, re-pointing b's edges at a cannot create a
	// cycle: any new cycle would have to close through the merged vertex,
	// and both closing directions were just excluded.
	for _, p := range sets.Sorted(ci.in[b]) {
		ci.removeEdge(p, b)
		if p == a {
			continue
		}
		if !ci.InsertEdge(p, a) {
			exceptions.Panicf("contracting vertex %d into %d made the cluster graph cyclic", b, a)
		}
	}
	for _, s := range sets.Sorted(ci.out[b]) {
		ci.removeEdge(b, s)
		if s == a {
			continue
		}
		if !ci.InsertEdge(a, s) {
			exceptions.Panicf("contracting vertex %d into %d made the cluster graph cyclic", b, a)
		}
	}
	delete(ci.rank, b)
	delete(ci.out, b)
	delete(ci.in, b)
	return true
}

func (ci *contractionIndex) addEdge(x, y int) {
	ci.out[x].Insert(y)
	ci.in[y].Insert(x)
}

func (ci *contractionIndex) removeEdge(x, y int) {
	ci.out[x].Delete(y)
	ci.in[y].Delete(x)
}

// reachable reports whether dst can be reached from src. Since ranks are
// topological, any src~>dst path stays within ranks [rank[src], rank[dst]],
// which bounds the search.
func (ci *contractionIndex) reachable(src, dst int) bool {
	if ci.rank[src] > ci.rank[dst] {
		return false
	}
	ub := ci.rank[dst]
	visited := sets.Make[int]()
	visited.Insert(src)
	stack := []int{src}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for w := range ci.out[v] {
			if w == dst {
				return true
			}
			if ci.rank[w] < ub && !visited.Has(w) {
				visited.Insert(w)
				stack = append(stack, w)
			}
		}
	}
	return false
}

// forwardSearch collects the vertices forward-reachable from y within the rank
// window upper-bounded by x's rank. Returns acyclic=false as soon as x itself
// is reached.
func (ci *contractionIndex) forwardSearch(y, x int) (forward sets.Set[int], acyclic bool) {
	ub := ci.rank[x]
	forward = sets.Make[int]()
	forward.Insert(y)
	stack := []int{y}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for w := range ci.out[v] {
			if w == x {
				return nil, false
			}
			if ci.rank[w] < ub && !forward.Has(w) {
				forward.Insert(w)
				stack = append(stack, w)
			}
		}
	}
	return forward, true
}

// backwardSearch collects the vertices that reach x within the rank window
// lower-bounded by y's rank.
func (ci *contractionIndex) backwardSearch(x, y int) sets.Set[int] {
	lb := ci.rank[y]
	backward := sets.Make[int]()
	backward.Insert(x)
	stack := []int{x}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for w := range ci.in[v] {
			if ci.rank[w] > lb && !backward.Has(w) {
				backward.Insert(w)
				stack = append(stack, w)
			}
		}
	}
	return backward
}

// reorder reassigns the ranks held by the two disjoint groups so that every
// backward vertex (reaching x) precedes every forward vertex (reachable from
// y), preserving the relative order within each group.
func (ci *contractionIndex) reorder(backwardSet, forwardSet sets.Set[int]) {
	backward := ci.rankSorted(backwardSet)
	forward := ci.rankSorted(forwardSet)

	affected := make([]int, 0, len(backward)+len(forward))
	affected = append(affected, backward...)
	affected = append(affected, forward...)
	pool := make([]int, len(affected))
	for i, v := range affected {
		pool[i] = ci.rank[v]
	}
	slices.Sort(pool)
	for i, v := range affected {
		ci.rank[v] = pool[i]
	}
}

func (ci *contractionIndex) rankSorted(vs sets.Set[int]) []int {
	s := make([]int, 0, len(vs))
	for v := range vs {
		s = append(s, v)
	}
	slices.SortFunc(s, func(a, b int) int { return cmp.Compare(ci.rank[a], ci.rank[b]) })
	return s
}
