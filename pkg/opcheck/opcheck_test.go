// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package opcheck_test

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/offload/backends"
	"github.com/gomlx/offload/pkg/core/graph"
	"github.com/gomlx/offload/pkg/opcheck"
)

type stubBackend struct {
	caps backends.Capabilities
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Version() string { return "0" }

func (s *stubBackend) Description() string { return "stub backend" }

func (s *stubBackend) Capabilities() backends.Capabilities { return s.caps }

func newStub() *stubBackend {
	return &stubBackend{caps: backends.Capabilities{
		Operations: map[string]bool{
			"Const":  true,
			"MatMul": true,
			"Relu":   true,
			"Add":    true,
		},
		DTypes: map[dtypes.DType]bool{
			dtypes.Float32: true,
			dtypes.Int32:   true,
		},
	}}
}

func TestSupported(t *testing.T) {
	g := graph.New("test")
	f32 := []graph.OutputSlot{{DType: dtypes.Float32}}
	weights, _ := g.AddNode("weights", "Const", f32)
	input, _ := g.AddNode("input", "Const", f32)
	matmul, _ := g.AddNode("matmul", "MatMul", f32)
	relu, _ := g.AddNode("relu", "Relu", f32)
	lookup, _ := g.AddNode("lookup", "HashTableFind", f32)
	wide, _ := g.AddNode("wide", "Const", []graph.OutputSlot{{DType: dtypes.Float64}})
	state, _ := g.AddNode("state", "Const", []graph.OutputSlot{{DType: dtypes.Float32, Ref: true}})
	reader, _ := g.AddNode("reader", "Add", f32)
	_, _ = g.AddEdge(weights, 0, matmul, 0)
	_, _ = g.AddEdge(input, 0, matmul, 1)
	_, _ = g.AddEdge(matmul, 0, relu, 0)
	_, _ = g.AddEdge(state, 0, reader, 0)
	_, _ = g.AddEdge(input, 0, reader, 1)

	checker := opcheck.New(newStub())
	assert.True(t, checker.Supported(weights))
	assert.True(t, checker.Supported(matmul))
	assert.True(t, checker.Supported(relu))
	assert.False(t, checker.Supported(lookup), "operation type not in the capability table")
	assert.False(t, checker.Supported(wide), "output dtype not supported")
	assert.False(t, checker.Supported(state), "reference-typed output")
	assert.False(t, checker.Supported(reader), "reads a reference-typed input")

	supported := checker.SupportedNodes(g)
	assert.True(t, supported.Equal(mkIdSet(weights, input, matmul, relu)))
}

func TestDisabledOps(t *testing.T) {
	g := graph.New("test")
	f32 := []graph.OutputSlot{{DType: dtypes.Float32}}
	a, _ := g.AddNode("a", "Const", f32)
	b, _ := g.AddNode("b", "MatMul", f32)
	_, _ = g.AddEdge(a, 0, b, 0)

	checker := opcheck.New(newStub(), "MatMul")
	assert.True(t, checker.Supported(a))
	assert.False(t, checker.Supported(b), "disabled by the host")
	require.Equal(t, "stub", checker.Backend().Name())

	// Same answers when asked again: the oracle has no per-query state.
	assert.True(t, checker.SupportedNodes(g).Equal(checker.SupportedNodes(g)))
}

func mkIdSet(nodes ...*graph.Node) map[graph.NodeId]struct{} {
	ids := make(map[graph.NodeId]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.Id()] = struct{}{}
	}
	return ids
}
