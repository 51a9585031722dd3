// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package cpu

import (
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/gomlx/offload/backends"
)

// Capabilities of the CPU backend: the set of supported operations and data types.
var Capabilities = backends.Capabilities{
	Operations: map[string]bool{
		"Const":       true,
		"Placeholder": true,
		"Identity":    true,
		"IdentityN":   true,
		"NoOp":        true,

		// Unary operations:
		"Abs":        true,
		"Ceil":       true,
		"Cos":        true,
		"Erf":        true,
		"Exp":        true,
		"Floor":      true,
		"Log":        true,
		"LogicalNot": true,
		"Neg":        true,
		"Relu":       true,
		"Relu6":      true,
		"Rsqrt":      true,
		"Sigmoid":    true,
		"Sign":       true,
		"Sin":        true,
		"Softplus":   true,
		"Sqrt":       true,
		"Square":     true,
		"Tanh":       true,

		// Binary operations:
		"Add":               true,
		"AddN":              true,
		"AddV2":             true,
		"Div":               true,
		"Equal":             true,
		"FloorDiv":          true,
		"FloorMod":          true,
		"Greater":           true,
		"GreaterEqual":      true,
		"LeakyRelu":         true,
		"Less":              true,
		"LessEqual":         true,
		"LogicalAnd":        true,
		"LogicalOr":         true,
		"Maximum":           true,
		"Minimum":           true,
		"Mul":               true,
		"NotEqual":          true,
		"Pow":               true,
		"RealDiv":           true,
		"SquaredDifference": true,
		"Sub":               true,

		// Array and shape operations:
		"Cast":         true,
		"Concat":       true,
		"ConcatV2":     true,
		"ExpandDims":   true,
		"Fill":         true,
		"Gather":       true,
		"GatherV2":     true,
		"Pack":         true,
		"Pad":          true,
		"Reshape":      true,
		"Select":       true,
		"SelectV2":     true,
		"Shape":        true,
		"Slice":        true,
		"Split":        true,
		"SplitV":       true,
		"Squeeze":      true,
		"StridedSlice": true,
		"Tile":         true,
		"Transpose":    true,
		"Unpack":       true,
		"ZerosLike":    true,

		// Reductions:
		"ArgMax": true,
		"ArgMin": true,
		"Max":    true,
		"Mean":   true,
		"Min":    true,
		"Prod":   true,
		"Sum":    true,

		// Neural-network operations:
		"AvgPool":               true,
		"BatchMatMul":           true,
		"BatchMatMulV2":         true,
		"BiasAdd":               true,
		"Conv2D":                true,
		"Conv2DBackpropInput":   true,
		"DepthwiseConv2dNative": true,
		"FusedBatchNorm":        true,
		"FusedBatchNormV3":      true,
		"MatMul":                true,
		"MaxPool":               true,
		"Softmax":               true,
	},
	DTypes: map[dtypes.DType]bool{
		dtypes.Bool:     true,
		dtypes.Int8:     true,
		dtypes.Int16:    true,
		dtypes.Int32:    true,
		dtypes.Int64:    true,
		dtypes.Uint8:    true,
		dtypes.Uint16:   true,
		dtypes.Float16:  true,
		dtypes.BFloat16: true,
		dtypes.Float32:  true,
		dtypes.Float64:  true,
	},
}
