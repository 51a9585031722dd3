// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gomlx/offload/pkg/support/sets"
)

func TestDeassignSmallCluster(t *testing.T) {
	g := buildGraph(t, "g",
		nodeSpec{name: "c0", op: "Const", outputs: 1},
		nodeSpec{name: "m1", op: "Relu", inputs: []string{"c0"}, outputs: 1},
		nodeSpec{name: "m2", op: "Tanh", inputs: []string{"m1"}, outputs: 1},
		nodeSpec{name: "solo", op: "Relu", outputs: 1},
	)
	setCluster(g, 0, "c0", "m1", "m2")
	setCluster(g, 1, "solo")

	assert.Equal(t, 1, deassignClusters(g, sets.Make[string](), 2))

	// The qualifying cluster keeps all its members, trivial ones included.
	assert.True(t, g.NodeByName("c0").HasAttr(AttrCluster))
	assert.True(t, g.NodeByName("m1").HasAttr(AttrCluster))
	assert.True(t, g.NodeByName("m2").HasAttr(AttrCluster))

	// The dissolved member returns to ordinary status.
	solo := g.NodeByName("solo")
	assert.False(t, solo.HasAttr(AttrCluster))
	assert.False(t, solo.HasAttr(AttrMarkedForClustering))
}

func TestDeassignTrivialMembersDoNotCount(t *testing.T) {
	g := buildGraph(t, "g",
		nodeSpec{name: "c0", op: "Const", outputs: 1},
		nodeSpec{name: "i0", op: "Identity", inputs: []string{"c0"}, outputs: 1},
		nodeSpec{name: "m", op: "Relu", inputs: []string{"i0"}, outputs: 1},
	)
	setCluster(g, 3, "c0", "i0", "m")

	// Three members, but only one counts toward the size threshold.
	assert.Equal(t, 1, deassignClusters(g, sets.Make[string](), 2))
	assert.False(t, g.NodeByName("m").HasAttr(AttrCluster))
	assert.False(t, g.NodeByName("c0").HasAttr(AttrMarkedForClustering))
}

func TestDeassignFullyPreservedCluster(t *testing.T) {
	g := buildGraph(t, "g",
		nodeSpec{name: "m1", op: "Relu", outputs: 1},
		nodeSpec{name: "m2", op: "Tanh", inputs: []string{"m1"}, outputs: 1},
	)
	setCluster(g, 0, "m1", "m2")

	// Size is fine, but every member must stay addressable.
	assert.Equal(t, 1, deassignClusters(g, sets.MakeWith("m1", "m2"), 2))
	assert.False(t, g.NodeByName("m1").HasAttr(AttrCluster))
	assert.False(t, g.NodeByName("m2").HasAttr(AttrCluster))
}

func TestDeassignPartiallyPreservedClusterSurvives(t *testing.T) {
	g := buildGraph(t, "g",
		nodeSpec{name: "m1", op: "Relu", outputs: 1},
		nodeSpec{name: "m2", op: "Tanh", inputs: []string{"m1"}, outputs: 1},
	)
	setCluster(g, 0, "m1", "m2")

	assert.Equal(t, 0, deassignClusters(g, sets.MakeWith("m1"), 2))
	assert.True(t, g.NodeByName("m1").HasAttr(AttrCluster))
	assert.True(t, g.NodeByName("m2").HasAttr(AttrCluster))
}
