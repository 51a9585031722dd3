// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package graphdef

import (
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/offload/pkg/core/graph"
)

const chainYAML = `
name: chain
attrs:
  source: test
nodes:
  - name: input
    op: Placeholder
    outputs:
      - dtype: Float32
  - name: split
    op: Split
    inputs: [input]
    outputs:
      - dtype: Float32
      - dtype: Float32
  - name: add
    op: Add
    inputs: ["split", "split:1", "^input"]
    outputs:
      - dtype: Float32
    attrs:
      alpha: 2
  - name: state
    op: Variable
    outputs:
      - dtype: Float32
        ref: true
`

func TestParseInput(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		slot    int
		control bool
		wantErr bool
	}{
		{input: "a", name: "a", slot: 0},
		{input: "a:0", name: "a", slot: 0},
		{input: "a:3", name: "a", slot: 3},
		{input: "^a", name: "a", slot: graph.ControlSlot, control: true},
		{input: "", wantErr: true},
		{input: "^", wantErr: true},
		{input: ":1", wantErr: true},
		{input: "a:x", wantErr: true},
		{input: "a:-1", wantErr: true},
	}
	for _, test := range tests {
		name, slot, control, err := ParseInput(test.input)
		if test.wantErr {
			assert.Error(t, err, "input %q", test.input)
			continue
		}
		require.NoError(t, err, "input %q", test.input)
		assert.Equal(t, test.name, name, "input %q", test.input)
		assert.Equal(t, test.slot, slot, "input %q", test.input)
		assert.Equal(t, test.control, control, "input %q", test.input)
	}

	assert.Equal(t, "a", FormatInput("a", 0))
	assert.Equal(t, "a:3", FormatInput("a", 3))
	assert.Equal(t, "^a", FormatInput("a", graph.ControlSlot))
}

func TestBuildFromYAML(t *testing.T) {
	def, err := FromYAML([]byte(chainYAML))
	require.NoError(t, err)
	require.Len(t, def.Nodes, 4)

	g, err := def.Build()
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, "chain", g.Name())
	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, "test", graph.GetAttrOr(g, "source", ""))

	add := g.NodeByName("add")
	require.NotNil(t, add)
	require.Equal(t, 2, add.NumDataIn())
	assert.Equal(t, "split", add.InDataEdge(0).Src.Name())
	assert.Equal(t, 0, add.InDataEdge(0).SrcSlot)
	assert.Equal(t, 1, add.InDataEdge(1).SrcSlot)
	require.Len(t, add.ControlIn(), 1)
	assert.Equal(t, "input", add.ControlIn()[0].Src.Name())
	assert.Equal(t, 2, graph.GetNodeAttrOr(add, "alpha", 0))

	state := g.NodeByName("state")
	require.NotNil(t, state)
	assert.True(t, state.HasRefOutput())
	assert.Equal(t, dtypes.Float32, state.Output(0).DType)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		def     GraphDef
		wantErr string
	}{
		{
			name: "unknown input node",
			def: GraphDef{Name: "g", Nodes: []NodeDef{
				{Name: "a", Op: "Abs", Inputs: []string{"ghost"}},
			}},
			wantErr: "references unknown node",
		},
		{
			name: "unknown dtype",
			def: GraphDef{Name: "g", Nodes: []NodeDef{
				{Name: "a", Op: "Const", Outputs: []OutputDef{{DType: "Quaternion"}}},
			}},
			wantErr: "output 0",
		},
		{
			name: "duplicate node name",
			def: GraphDef{Name: "g", Nodes: []NodeDef{
				{Name: "a", Op: "Const"},
				{Name: "a", Op: "Const"},
			}},
			wantErr: "already has a node named",
		},
		{
			name: "data input after control input",
			def: GraphDef{Name: "g", Nodes: []NodeDef{
				{Name: "a", Op: "Const", Outputs: []OutputDef{{DType: "Float32"}}},
				{Name: "b", Op: "Const", Outputs: []OutputDef{{DType: "Float32"}}},
				{Name: "c", Op: "Add", Inputs: []string{"a", "^b", "b"}},
			}},
			wantErr: "after a control input",
		},
		{
			name: "output slot out of range",
			def: GraphDef{Name: "g", Nodes: []NodeDef{
				{Name: "a", Op: "Const", Outputs: []OutputDef{{DType: "Float32"}}},
				{Name: "b", Op: "Abs", Inputs: []string{"a:5"}},
			}},
			wantErr: "has 1 outputs",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.def.Build()
			require.ErrorContains(t, err, test.wantErr)
		})
	}
}

func TestExportRoundTrip(t *testing.T) {
	def, err := FromYAML([]byte(chainYAML))
	require.NoError(t, err)
	g, err := def.Build()
	require.NoError(t, err)

	exported, err := Export(g)
	require.NoError(t, err)
	require.Len(t, exported.Nodes, 4)
	assert.Equal(t, "chain", exported.Name)
	assert.Equal(t, map[string]any{"source": "test"}, exported.Attrs)

	byName := make(map[string]NodeDef)
	for _, nodeDef := range exported.Nodes {
		byName[nodeDef.Name] = nodeDef
	}
	assert.Equal(t, []string{"split", "split:1", "^input"}, byName["add"].Inputs)
	assert.Equal(t, map[string]any{"alpha": 2}, byName["add"].Attrs)
	require.Len(t, byName["state"].Outputs, 1)
	assert.True(t, byName["state"].Outputs[0].Ref)
	assert.Equal(t, "Float32", byName["state"].Outputs[0].DType)

	// The YAML/build/export cycle is stable.
	data, err := exported.ToYAML()
	require.NoError(t, err)
	def2, err := FromYAML(data)
	require.NoError(t, err)
	g2, err := def2.Build()
	require.NoError(t, err)
	exported2, err := Export(g2)
	require.NoError(t, err)
	assert.Equal(t, exported, exported2)
}

func TestExportRejectsSparseInputSlots(t *testing.T) {
	g := graph.New("g")
	outs := []graph.OutputSlot{{DType: dtypes.Float32}}
	a, _ := g.AddNode("a", "Const", outs)
	b, _ := g.AddNode("b", "Add", outs)
	_, _ = g.AddEdge(a, 0, b, 0)
	_, _ = g.AddEdge(a, 0, b, 1)
	g.RemoveEdge(b.InDataEdge(0))

	_, err := Export(g)
	require.ErrorContains(t, err, "no producer for input slot 0")
}

func TestToDOT(t *testing.T) {
	def, err := FromYAML([]byte(chainYAML))
	require.NoError(t, err)
	g, err := def.Build()
	require.NoError(t, err)

	dot := ToDOT(g, nil)
	assert.True(t, strings.HasPrefix(dot, "digraph \"chain\" {"))
	assert.Contains(t, dot, "\"input\" [label=\"input\\nPlaceholder\"];")
	assert.Contains(t, dot, "\"input\" -> \"add\" [style=dashed];")
	assert.Contains(t, dot, "\"split\" -> \"add\" [label=\":1\"];")
	assert.NotContains(t, dot, "fillcolor")

	groups := map[graph.NodeId]int{
		g.NodeByName("split").Id(): 0,
		g.NodeByName("add").Id():   0,
	}
	dot = ToDOT(g, groups)
	assert.Contains(t, dot, "fillcolor=lightblue")
}
