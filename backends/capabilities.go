// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"maps"

	"github.com/gomlx/gopjrt/dtypes"
)

// Capabilities holds mappings of what is supported by a backend.
type Capabilities struct {
	// Operations supported by a backend, keyed by operation type tag.
	// If not listed, it's assumed to be false, hence not supported.
	Operations map[string]bool

	// DTypes list the data types supported by a backend.
	// If not listed, it's assumed to be false, hence not supported.
	DTypes map[dtypes.DType]bool
}

// Clone makes a deep copy of the Capabilities.
func (c Capabilities) Clone() Capabilities {
	var c2 Capabilities
	c2.Operations = make(map[string]bool, len(c.Operations))
	maps.Copy(c2.Operations, c.Operations)
	c2.DTypes = make(map[dtypes.DType]bool, len(c.DTypes))
	maps.Copy(c2.DTypes, c.DTypes)
	return c2
}

// SupportsOp reports whether the operation type is supported.
func (c Capabilities) SupportsOp(op string) bool {
	return c.Operations[op]
}

// SupportsDType reports whether the data type is supported.
func (c Capabilities) SupportsDType(dtype dtypes.DType) bool {
	return c.DTypes[dtype]
}
