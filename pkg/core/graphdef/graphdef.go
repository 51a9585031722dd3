// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package graphdef is the serialized interchange form of a computation graph.
//
// A GraphDef is a flat list of NodeDefs; each NodeDef names its inputs with the
// usual TensorFlow-flavored encoding: "src" for output slot 0 of node src, "src:2"
// for output slot 2 and "^src" for a control dependency. Data inputs are positional
// (the i-th data input feeds input slot i) and control inputs come after all data
// inputs.
//
// GraphDefs are read and written as YAML (FromYAML, ToYAML), converted to the
// in-memory form with Build and back with Export. ToDOT renders a Graphviz view
// used by the diagnostic dumps.
package graphdef

import (
	"strconv"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gomlx/offload/pkg/core/graph"
)

// GraphDef is the serialized form of a graph.Graph.
type GraphDef struct {
	Name  string         `yaml:"name"`
	Nodes []NodeDef      `yaml:"nodes"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
}

// NodeDef is the serialized form of one node.
type NodeDef struct {
	Name    string         `yaml:"name"`
	Op      string         `yaml:"op"`
	Inputs  []string       `yaml:"inputs,omitempty"`
	Outputs []OutputDef    `yaml:"outputs,omitempty"`
	Attrs   map[string]any `yaml:"attrs,omitempty"`
}

// OutputDef is the serialized form of one output slot.
type OutputDef struct {
	DType string `yaml:"dtype"`
	Ref   bool   `yaml:"ref,omitempty"`
}

// FromYAML parses a YAML-serialized GraphDef.
func FromYAML(data []byte) (*GraphDef, error) {
	def := &GraphDef{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, errors.Wrapf(err, "parsing GraphDef YAML")
	}
	return def, nil
}

// ToYAML serializes the GraphDef as YAML.
func (def *GraphDef) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, errors.Wrapf(err, "serializing GraphDef %q", def.Name)
	}
	return data, nil
}

// ParseInput decodes one input reference: "^src" is a control dependency on src,
// "src:k" is output slot k of src and plain "src" is output slot 0.
func ParseInput(input string) (srcName string, srcSlot int, control bool, err error) {
	if input == "" {
		return "", 0, false, errors.Errorf("empty input reference")
	}
	if strings.HasPrefix(input, "^") {
		name := input[1:]
		if name == "" {
			return "", 0, false, errors.Errorf("control input %q names no node", input)
		}
		return name, graph.ControlSlot, true, nil
	}
	name, slotStr, found := strings.Cut(input, ":")
	if !found {
		return input, 0, false, nil
	}
	if name == "" {
		return "", 0, false, errors.Errorf("input %q names no node", input)
	}
	slot, convErr := strconv.Atoi(slotStr)
	if convErr != nil || slot < 0 {
		return "", 0, false, errors.Errorf("input %q has an invalid output slot %q", input, slotStr)
	}
	return name, slot, false, nil
}

// FormatInput is the inverse of ParseInput.
func FormatInput(srcName string, srcSlot int) string {
	if srcSlot == graph.ControlSlot {
		return "^" + srcName
	}
	if srcSlot == 0 {
		return srcName
	}
	return srcName + ":" + strconv.Itoa(srcSlot)
}

// Build converts the GraphDef into a mutable graph.Graph.
//
// It fails on duplicate or empty node names, unknown dtype names, inputs that
// reference nodes absent from the def, output slots out of range, and control
// inputs listed before data inputs.
func (def *GraphDef) Build() (*graph.Graph, error) {
	g := graph.New(def.Name)
	for key, value := range def.Attrs {
		g.SetAttr(key, value)
	}
	for _, nodeDef := range def.Nodes {
		outputs := make([]graph.OutputSlot, len(nodeDef.Outputs))
		for i, out := range nodeDef.Outputs {
			dtype, err := dtypes.DTypeString(out.DType)
			if err != nil {
				return nil, errors.WithMessagef(err, "node %q output %d", nodeDef.Name, i)
			}
			outputs[i] = graph.OutputSlot{DType: dtype, Ref: out.Ref}
		}
		n, err := g.AddNode(nodeDef.Name, nodeDef.Op, outputs)
		if err != nil {
			return nil, err
		}
		for key, value := range nodeDef.Attrs {
			n.SetAttr(key, value)
		}
	}
	// Second pass wires the edges, now that every node exists.
	for _, nodeDef := range def.Nodes {
		dst := g.NodeByName(nodeDef.Name)
		dataSlot := 0
		seenControl := false
		for _, input := range nodeDef.Inputs {
			srcName, srcSlot, control, err := ParseInput(input)
			if err != nil {
				return nil, errors.WithMessagef(err, "node %q", nodeDef.Name)
			}
			src := g.NodeByName(srcName)
			if src == nil {
				return nil, errors.Errorf("node %q input %q references unknown node %q", nodeDef.Name, input, srcName)
			}
			if control {
				seenControl = true
				if _, err := g.AddControlEdge(src, dst); err != nil {
					return nil, errors.WithMessagef(err, "node %q input %q", nodeDef.Name, input)
				}
				continue
			}
			if seenControl {
				return nil, errors.Errorf("node %q lists data input %q after a control input", nodeDef.Name, input)
			}
			if _, err := g.AddEdge(src, srcSlot, dst, dataSlot); err != nil {
				return nil, errors.WithMessagef(err, "node %q input %q", nodeDef.Name, input)
			}
			dataSlot++
		}
	}
	return g, nil
}

// Export converts a graph.Graph back into its serialized form. Nodes are written in
// id order, so exporting is deterministic.
//
// It fails if some node's data input slots are not dense: such graphs have no
// positional input encoding.
func Export(g *graph.Graph) (*GraphDef, error) {
	def := &GraphDef{Name: g.Name()}
	if keys := g.Attrs(); len(keys) > 0 {
		def.Attrs = make(map[string]any, len(keys))
		for _, key := range keys {
			def.Attrs[key], _ = g.Attr(key)
		}
	}
	for _, n := range g.Nodes() {
		nodeDef := NodeDef{Name: n.Name(), Op: n.Op()}
		for slot, e := range n.DataIn() {
			if e.DstSlot != slot {
				return nil, errors.Errorf("cannot export graph %q: node %q has no producer for input slot %d", g.Name(), n.Name(), slot)
			}
			nodeDef.Inputs = append(nodeDef.Inputs, FormatInput(e.Src.Name(), e.SrcSlot))
		}
		for _, e := range n.ControlIn() {
			nodeDef.Inputs = append(nodeDef.Inputs, FormatInput(e.Src.Name(), graph.ControlSlot))
		}
		for _, slot := range n.Outputs() {
			nodeDef.Outputs = append(nodeDef.Outputs, OutputDef{DType: slot.DType.String(), Ref: slot.Ref})
		}
		if keys := n.Attrs(); len(keys) > 0 {
			nodeDef.Attrs = make(map[string]any, len(keys))
			for _, key := range keys {
				nodeDef.Attrs[key], _ = n.Attr(key)
			}
		}
		def.Nodes = append(def.Nodes, nodeDef)
	}
	return def, nil
}
