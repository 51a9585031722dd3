// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends_test

import (
	"os"
	"sync"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/offload/backends"
)

type fakeBackend struct {
	name   string
	config string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Version() string { return "test" }

func (f *fakeBackend) Description() string { return "fake backend for tests" }

func (f *fakeBackend) Capabilities() backends.Capabilities { return backends.Capabilities{} }

var registerFakesOnce sync.Once

// registerFakes registers the test backends; "alpha" first, so it is the default.
func registerFakes() {
	registerFakesOnce.Do(func() {
		for _, name := range []string{"alpha", "beta"} {
			name := name
			backends.Register(name, func(config string) (backends.Backend, error) {
				return &fakeBackend{name: name, config: config}, nil
			})
		}
		backends.Register("failing", func(config string) (backends.Backend, error) {
			return nil, errors.New("constructor exploded")
		})
	})
}

// This test must run before any fake is registered, so it stays first in the file.
func TestResolutionWithoutBackends(t *testing.T) {
	_, err := backends.NewWithConfig("")
	require.Error(t, err)
	var resErr *backends.BackendResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, resErr.Available)
	assert.Contains(t, err.Error(), "no backends registered")
}

func TestNewWithConfig(t *testing.T) {
	registerFakes()

	b, err := backends.NewWithConfig("")
	require.NoError(t, err)
	assert.Equal(t, "alpha", b.Name())

	b, err = backends.NewWithConfig("beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", b.Name())
	assert.Equal(t, "", b.(*fakeBackend).config)

	b, err = backends.NewWithConfig("beta:opt1,opt2")
	require.NoError(t, err)
	assert.Equal(t, "opt1,opt2", b.(*fakeBackend).config)

	_, err = backends.NewWithConfig("gamma")
	var resErr *backends.BackendResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "gamma", resErr.Config)
	assert.Equal(t, []string{"alpha", "beta", "failing"}, resErr.Available)
	assert.Contains(t, err.Error(), `backend "gamma" is not registered`)

	_, err = backends.NewWithConfig("failing")
	require.ErrorAs(t, err, &resErr)
	assert.Contains(t, err.Error(), "constructor exploded")
}

func TestNewDefaults(t *testing.T) {
	registerFakes()

	t.Setenv(backends.OFFLOAD_BACKEND, "beta")
	b, err := backends.New()
	require.NoError(t, err)
	assert.Equal(t, "beta", b.Name())

	// t.Setenv registered the restore; clear it to exercise the fallbacks.
	require.NoError(t, os.Unsetenv(backends.OFFLOAD_BACKEND))
	backends.DefaultConfig = "beta:from-default"
	defer func() { backends.DefaultConfig = "" }()
	b, err = backends.New()
	require.NoError(t, err)
	assert.Equal(t, "beta", b.Name())
	assert.Equal(t, "from-default", b.(*fakeBackend).config)

	backends.DefaultConfig = ""
	b, err = backends.New()
	require.NoError(t, err)
	assert.Equal(t, "alpha", b.Name())
}

func TestCurrentManager(t *testing.T) {
	registerFakes()
	require.NoError(t, os.Unsetenv(backends.OFFLOAD_BACKEND))
	backends.ResetCurrent()
	defer backends.ResetCurrent()

	b, err := backends.Current()
	require.NoError(t, err)
	assert.Equal(t, "alpha", b.Name())

	again, err := backends.Current()
	require.NoError(t, err)
	assert.Same(t, b, again)

	set, err := backends.SetCurrent("beta")
	require.NoError(t, err)
	current, err := backends.Current()
	require.NoError(t, err)
	assert.Same(t, set, current)
	assert.Equal(t, "beta", current.Name())

	_, err = backends.SetCurrent("gamma")
	require.Error(t, err)
	current, err = backends.Current()
	require.NoError(t, err)
	assert.Equal(t, "beta", current.Name(), "a failed SetCurrent must not clobber the current backend")
}

func TestRegistered(t *testing.T) {
	registerFakes()
	assert.Equal(t, []string{"alpha", "beta", "failing"}, backends.Registered())
}

func TestCapabilitiesClone(t *testing.T) {
	caps := backends.Capabilities{
		Operations: map[string]bool{"MatMul": true},
		DTypes:     map[dtypes.DType]bool{dtypes.Float32: true},
	}
	clone := caps.Clone()
	clone.Operations["Conv2D"] = true
	clone.DTypes[dtypes.Int32] = true

	assert.True(t, caps.SupportsOp("MatMul"))
	assert.False(t, caps.SupportsOp("Conv2D"))
	assert.True(t, caps.SupportsDType(dtypes.Float32))
	assert.False(t, caps.SupportsDType(dtypes.Int32))
	assert.True(t, clone.SupportsOp("Conv2D"))
}
