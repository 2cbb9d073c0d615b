// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
)

func TestCacheInputs(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 16)
	_ = f.Input("unused", dtypes.Float32, 8)
	y := f.Exp(x)
	f.AddOutput(y)

	require.Nil(t, CacheInputs(f, false))

	cached := CacheInputs(f, true)
	require.Len(t, cached, 1)
	cache := cached[0]
	require.Equal(t, fusion.MemoryLocal, cache.MemorySpace())
	require.Equal(t, []*fusion.TensorView{cache}, f.ConsumersOf(x))
	require.Equal(t, fusion.OpTypeSet, f.DefinitionOf(cache).Op())
	require.Equal(t, []*fusion.TensorView{cache}, f.ProducersOf(y))
}

func TestCacheAndForkOutputs(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 16)
	y := f.Exp(x)
	z := f.Neg(y)
	f.AddOutput(y)
	f.AddOutput(z)

	pairs := CacheAndForkOutputs(f, true)
	require.Len(t, pairs, 2)

	// y was consumed by z, so the stored output is a fork of y.
	fork := pairs[0].Output
	require.NotSame(t, y, fork)
	require.Same(t, f.Outputs()[0], fork)
	require.Equal(t, fusion.OpTypeSet, f.DefinitionOf(fork).Op())
	require.Equal(t, fusion.MemoryLocal, y.MemorySpace())

	require.Same(t, z, pairs[1].Output)
	require.Same(t, f.Outputs()[1], z)
	require.Equal(t, fusion.OpTypeNeg, f.DefinitionOf(pairs[1].Cache).Op())
	require.Equal(t, fusion.OpTypeSet, f.DefinitionOf(z).Op())

	for _, pair := range pairs {
		require.Equal(t, fusion.MemoryLocal, pair.Cache.MemorySpace())
		require.Equal(t, fusion.MemoryGlobal, pair.Output.MemorySpace())
	}
}

func TestCacheAndForkOutputsForwardedInput(t *testing.T) {
	f := fusion.New()
	in := f.Input("in", dtypes.Float32, 4)
	f.AddOutput(in)

	require.Empty(t, CacheAndForkOutputs(f, true))
	require.Equal(t, []*fusion.TensorView{in}, f.Outputs())
}

func TestCacheAndForkOutputsNoUnroll(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 16)
	y := f.Exp(x)
	z := f.Neg(y)
	f.AddOutput(y)
	f.AddOutput(z)

	// Forking still happens without unrolling, caching does not.
	pairs := CacheAndForkOutputs(f, false)
	require.Empty(t, pairs)
	require.NotSame(t, y, f.Outputs()[0])
	require.Equal(t, fusion.OpTypeSet, f.DefinitionOf(f.Outputs()[0]).Op())
	require.Equal(t, fusion.MemoryLocal, y.MemorySpace())
}

func TestClearMemorySpace(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 16)
	y := f.Exp(x)
	z := f.Neg(y)
	f.AddOutput(z)

	y.SetMemorySpace(fusion.MemoryShared)
	x.SetMemorySpace(fusion.MemoryLocal)

	ClearMemorySpace(f)
	require.Equal(t, fusion.MemoryGlobal, x.MemorySpace())
	require.Equal(t, fusion.MemoryLocal, y.MemorySpace())
	require.Equal(t, fusion.MemoryGlobal, z.MemorySpace())
}
