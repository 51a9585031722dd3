// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import "sync"

// The process-wide current backend. Hosts usually resolve one backend at startup
// and every later pass invocation consults it; the mutex makes the set-then-read
// sequence safe when hosts drive passes from multiple goroutines.
var (
	muCurrent sync.Mutex
	current   Backend
)

// SetCurrent resolves the configuration string (see NewWithConfig) and installs the
// result as the process-wide current backend, returning it.
func SetCurrent(config string) (Backend, error) {
	backend, err := NewWithConfig(config)
	if err != nil {
		return nil, err
	}
	muCurrent.Lock()
	defer muCurrent.Unlock()
	current = backend
	return backend, nil
}

// Current returns the process-wide current backend. If none was installed with
// SetCurrent, it resolves the default one (see New) and installs it.
func Current() (Backend, error) {
	muCurrent.Lock()
	defer muCurrent.Unlock()
	if current != nil {
		return current, nil
	}
	backend, err := New()
	if err != nil {
		return nil, err
	}
	current = backend
	return backend, nil
}

// ResetCurrent clears the process-wide current backend, so the next Current call
// resolves it again. Mostly useful in tests.
func ResetCurrent() {
	muCurrent.Lock()
	defer muCurrent.Unlock()
	current = nil
}
