// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package costs provides advisory execution-cost estimates for dataflow graphs.
//
// Estimates are informational: the partitioning driver logs them so regressions in
// cluster shapes show up in the logs, but no clustering decision depends on them.
// Without tensor shapes in the graph the analytical model prices every output as a
// nominal fixed-size tensor, which is enough to compare two partitionings of the
// same graph and nothing more.
package costs

import (
	"time"

	"github.com/gomlx/gopjrt/dtypes"

	"github.com/gomlx/offload/pkg/core/graph"
)

// Costs summarizes the predicted cost of executing a graph once.
type Costs struct {
	// Compute is the predicted execution time.
	Compute time.Duration

	// Memory is the predicted number of bytes needed to hold every node output.
	Memory uint64

	// PerOp breaks Compute down by operation type.
	PerOp map[string]time.Duration
}

// Estimator predicts execution costs for a graph.
type Estimator interface {
	Predict(g *graph.Graph) (Costs, error)
}

// nominalElements is the assumed element count of every tensor: the graphs this
// pass sees carry dtypes but no shapes.
const nominalElements = 1 << 12

// Per-op execution time for one nominal tensor. Operations absent from the table
// cost defaultOpTime; the zero entries are pass-through or metadata ops.
var opTimeTable = map[string]time.Duration{
	"Const":       0,
	"Identity":    0,
	"IdentityN":   0,
	"NoOp":        0,
	"Placeholder": 0,
	"Shape":       0,

	"BatchMatMul":           20 * time.Microsecond,
	"BatchMatMulV2":         20 * time.Microsecond,
	"Conv2D":                20 * time.Microsecond,
	"Conv2DBackpropInput":   20 * time.Microsecond,
	"DepthwiseConv2dNative": 20 * time.Microsecond,
	"MatMul":                20 * time.Microsecond,

	"AvgPool":          5 * time.Microsecond,
	"FusedBatchNorm":   5 * time.Microsecond,
	"FusedBatchNormV3": 5 * time.Microsecond,
	"Max":              5 * time.Microsecond,
	"MaxPool":          5 * time.Microsecond,
	"Mean":             5 * time.Microsecond,
	"Min":              5 * time.Microsecond,
	"Prod":             5 * time.Microsecond,
	"Softmax":          5 * time.Microsecond,
	"Sum":              5 * time.Microsecond,
}

const defaultOpTime = time.Microsecond

type analytical struct{}

// NewAnalytical returns an Estimator that prices each node from a static per-op
// time table and sizes each output as a nominal fixed-size tensor.
func NewAnalytical() Estimator {
	return analytical{}
}

// Predict implements Estimator. It never fails for well-formed graphs.
func (analytical) Predict(g *graph.Graph) (Costs, error) {
	c := Costs{PerOp: make(map[string]time.Duration)}
	for _, n := range g.Nodes() {
		opTime, found := opTimeTable[n.Op()]
		if !found {
			opTime = defaultOpTime
		}
		c.Compute += opTime
		if opTime > 0 {
			c.PerOp[n.Op()] += opTime
		}
		for _, slot := range n.Outputs() {
			if slot.DType == dtypes.InvalidDType {
				continue
			}
			c.Memory += uint64(nominalElements * slot.DType.Size())
		}
	}
	return c, nil
}
