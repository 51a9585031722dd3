// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"sort"
	"sync"

	"github.com/gomlx/offload/pkg/core/graphdef"
)

// ClusterManager registers the bodies of encapsulated clusters for the later
// compilation step. Ids are monotonically increasing and never reused, so an
// encapsulated node name ("offload_cluster_<id>") stays unique across runs.
//
// The zero value is not usable; create managers with NewClusterManager. The
// process-wide Clusters manager is shared by every Optimizer that does not
// install its own, which mirrors how hosts look clusters up afterwards: eviction
// through one Optimizer's fast path empties it for all of them.
type ClusterManager struct {
	mu     sync.Mutex
	bodies map[int]*graphdef.GraphDef
	nextId int
}

// Clusters is the process-wide cluster registry.
var Clusters = NewClusterManager()

// NewClusterManager creates an empty registry.
func NewClusterManager() *ClusterManager {
	return &ClusterManager{bodies: make(map[int]*graphdef.GraphDef)}
}

// Register stores a cluster body and returns its id.
func (m *ClusterManager) Register(body *graphdef.GraphDef) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextId
	m.nextId++
	m.bodies[id] = body
	return id
}

// Get returns the body registered under id, or nil.
func (m *ClusterManager) Get(id int) *graphdef.GraphDef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[id]
}

// Ids returns the registered ids, sorted.
func (m *ClusterManager) Ids() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.bodies))
	for id := range m.bodies {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Count returns the number of registered bodies.
func (m *ClusterManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bodies)
}

// EvictAll drops every registered body. Ids are not reset: later registrations
// continue from where the counter left off.
func (m *ClusterManager) EvictAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = make(map[int]*graphdef.GraphDef)
}
