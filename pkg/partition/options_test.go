// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	options := DefaultOptions()
	assert.True(t, options.Enabled)
	assert.Equal(t, 2, options.MinClusterSize)
	assert.Empty(t, options.DisabledOps)
	assert.Empty(t, options.DumpDir)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(OFFLOAD_DISABLE, "1")
	t.Setenv(OFFLOAD_DUMP_GRAPHS, "/tmp/offload-dumps")
	t.Setenv(OFFLOAD_MIN_NONTRIVIAL_NODES, "5")
	t.Setenv(OFFLOAD_DISABLED_OPS, "MatMul, Conv2D,,")

	options := FromEnv()
	assert.False(t, options.Enabled)
	assert.Equal(t, "/tmp/offload-dumps", options.DumpDir)
	assert.Equal(t, 5, options.MinClusterSize)
	assert.Equal(t, []string{"MatMul", "Conv2D"}, options.DisabledOps)
}

func TestFromEnvLenient(t *testing.T) {
	// Only a leading '1' disables; unparsable overrides are ignored.
	t.Setenv(OFFLOAD_DISABLE, "0")
	t.Setenv(OFFLOAD_MIN_NONTRIVIAL_NODES, "banana")

	options := FromEnv()
	assert.True(t, options.Enabled)
	assert.Equal(t, 2, options.MinClusterSize)
}
