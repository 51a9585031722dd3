// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface an offload target has to implement to be
// considered by the partitioning pass, and the registry used to resolve one.
//
// A backend here is only an identity plus a capability table: the pass never
// executes operations, it only asks "could this backend run that node". Concrete
// backends register themselves on import, typically:
//
//	import _ "github.com/gomlx/offload/backends/cpu"
//
// The default backend is resolved from the OFFLOAD_BACKEND environment variable,
// then from DefaultConfig, then falls back to the first registered backend. All
// resolution failures are reported as *BackendResolutionError.
package backends

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Backend is the identity and capability surface of an offload target.
type Backend interface {
	// Name returns the registered short name of the backend, e.g. "CPU".
	Name() string

	// Version of the backend implementation.
	Version() string

	// Description is a longer description of the backend that can be used to pretty-print.
	Description() string

	// Capabilities returns the operations and data types the backend can execute.
	Capabilities() Capabilities
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) (Backend, error)

var (
	muRegistry             sync.Mutex
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a constructor that takes as input a
// configuration string that is passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// Registered returns the names of the registered backends, sorted.
func Registered() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	return registeredLocked()
}

func registeredLocked() []string {
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig is the backend configuration to use if OFFLOAD_BACKEND is not set.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// OFFLOAD_BACKEND is the environment variable with the default backend
// configuration to use.
//
// The format of the value is "<backend_name>:<backend_configuration>".
// "<backend_name>" is the name of a registered backend (e.g.: "CPU") and
// "<backend_configuration>" is backend specific.
const OFFLOAD_BACKEND = "OFFLOAD_BACKEND"

// New returns a new Backend resolved from the default configuration:
//
// 1. The environment variable OFFLOAD_BACKEND, if set.
// 2. The variable DefaultConfig, if not empty.
// 3. The first registered backend, with an empty configuration.
//
// It returns a *BackendResolutionError if no backend was registered or the
// configured one is unknown.
func New() (Backend, error) {
	if config, found := os.LookupEnv(OFFLOAD_BACKEND); found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig resolves a backend from a configuration string formatted as
// "<backend_name>:<backend_configuration>"; the name alone is also accepted. An
// empty name selects the first registered backend.
func NewWithConfig(config string) (Backend, error) {
	muRegistry.Lock()
	if len(registeredConstructors) == 0 {
		muRegistry.Unlock()
		return nil, &BackendResolutionError{
			Config: config,
			Err:    errors.Errorf("no backends registered: import a backend package, e.g. _ %q", "github.com/gomlx/offload/backends/cpu"),
		}
	}
	backendName := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	} else if config != "" {
		backendName = config
		backendConfig = ""
	}
	constructor, found := registeredConstructors[backendName]
	available := registeredLocked()
	muRegistry.Unlock()
	if !found {
		return nil, &BackendResolutionError{
			Config:    config,
			Available: available,
			Err:       errors.Errorf("backend %q is not registered", backendName),
		}
	}
	backend, err := constructor(backendConfig)
	if err != nil {
		return nil, &BackendResolutionError{Config: config, Available: available, Err: err}
	}
	return backend, nil
}

// MustNew is like New but panics on resolution failure.
func MustNew() Backend {
	backend, err := New()
	if err != nil {
		panic(err)
	}
	return backend
}
