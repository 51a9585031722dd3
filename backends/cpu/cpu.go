// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package cpu registers the bundled reference backend under the name "CPU".
//
// It supports the common dataflow operations and dense numeric types; anything
// stateful (variables, assignments, queues) is deliberately absent, so graphs
// touching mutable state keep those nodes on the host.
package cpu

import (
	"github.com/gomlx/offload/backends"
)

// BackendName to be used in OFFLOAD_BACKEND to specify this backend.
const BackendName = "CPU"

// Version of the backend implementation.
const Version = "2026.0"

func init() {
	backends.Register(BackendName, New)
}

// New constructs a new CPU Backend.
// There are no configurations, the string is simply ignored.
func New(_ string) (backends.Backend, error) {
	return &Backend{}, nil
}

// Backend implements the backends.Backend interface.
type Backend struct{}

// Compile-time check that cpu.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name returns the registered short name of the backend.
func (b *Backend) Name() string { return BackendName }

// Version of the backend implementation.
func (b *Backend) Version() string { return Version }

// Description is a longer description of the Backend that can be used to pretty-print.
func (b *Backend) Description() string {
	return "Reference host backend for common dataflow operations"
}

// Capabilities returns information about what is supported by this backend.
func (b *Backend) Capabilities() backends.Capabilities {
	return Capabilities.Clone()
}
