// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"fmt"

	"github.com/gomlx/offload/backends"
)

// The pipeline fails in exactly four ways, each with its own error type so hosts
// can match them with errors.As. A failed run leaves the input untouched: the
// returned graph of a failed Optimize call is nil and the serialized input is
// still valid.

// BackendResolutionError is returned when no backend could be resolved before
// marking. See backends.BackendResolutionError.
type BackendResolutionError = backends.BackendResolutionError

// GraphConstructionError reports that the serialized graph could not be turned
// into an in-memory graph, before any phase ran.
type GraphConstructionError struct {
	// Graph is the name of the graph that failed to build.
	Graph string

	// Err is the underlying construction failure.
	Err error
}

// Error implements the error interface.
func (e *GraphConstructionError) Error() string {
	return fmt.Sprintf("constructing graph %q: %v", e.Graph, e.Err)
}

// Unwrap returns the underlying failure.
func (e *GraphConstructionError) Unwrap() error { return e.Err }

// StructuralError reports that a traversal or validation step found the graph in
// a state the pipeline cannot handle, e.g. a cycle in the input.
type StructuralError struct {
	// Node is the name of the offending node, when one can be singled out.
	Node string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("graph structure: %v", e.Err)
	}
	return fmt.Sprintf("graph structure at node %q: %v", e.Node, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StructuralError) Unwrap() error { return e.Err }

// EncapsulationError reports that a surviving cluster's boundary could not be
// reconstructed into a single node.
type EncapsulationError struct {
	// Cluster is the id of the cluster being encapsulated.
	Cluster int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *EncapsulationError) Error() string {
	return fmt.Sprintf("encapsulating cluster %d: %v", e.Cluster, e.Err)
}

// Unwrap returns the underlying failure.
func (e *EncapsulationError) Unwrap() error { return e.Err }
