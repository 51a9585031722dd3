// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"fmt"
	"strings"
)

// BackendResolutionError reports that no usable backend could be resolved from a
// configuration string. Retrieve it with errors.As.
type BackendResolutionError struct {
	// Config is the configuration string that failed to resolve.
	Config string

	// Available lists the backend names registered at the time, sorted. Empty if
	// none were registered.
	Available []string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *BackendResolutionError) Error() string {
	msg := fmt.Sprintf("resolving backend from configuration %q: %v", e.Config, e.Err)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (registered backends: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// Unwrap returns the underlying failure.
func (e *BackendResolutionError) Unwrap() error { return e.Err }
