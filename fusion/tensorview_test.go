// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestAxisAccess(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 4, 8, 16)
	require.Equal(t, 3, x.NDims())
	require.Same(t, x.Leaf()[2], x.Axis(-1))
	require.Same(t, x.Leaf()[0], x.Axis(0))
	require.Panics(t, func() { x.Axis(3) })
	require.Panics(t, func() { x.Axis(-4) })
}

func TestSplit(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 64)
	rootID := x.Root()[0].ID()
	require.Same(t, x, x.Split(0, 8))
	require.Equal(t, 2, x.NDims())
	require.Equal(t, int64(8), x.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(8), x.Axis(1).Extent().ConstValue())

	require.Len(t, x.History(), 1)
	rec := x.History()[0]
	require.Equal(t, TransformSplit, rec.Kind)
	require.Equal(t, rootID, rec.In)
	require.Equal(t, x.Axis(0).ID(), rec.Outer)
	require.Equal(t, x.Axis(1).ID(), rec.Inner)
	require.Equal(t, -1, rec.Out)
	require.Equal(t, int64(8), rec.Factor)

	// Uneven splits round the outer extent up.
	y := f.Input("y", dtypes.Float32, 10)
	y.Split(0, 4)
	require.Equal(t, int64(3), y.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(4), y.Axis(1).Extent().ConstValue())

	// Splitting a reduction axis yields two reduction axes.
	r := f.Sum(f.Input("z", dtypes.Float32, 4, 32), 1)
	r.Split(1, 8)
	require.True(t, r.Axis(1).IsReduction())
	require.True(t, r.Axis(2).IsReduction())

	require.Panics(t, func() { x.Split(0, 0) })
	require.Panics(t, func() { x.Split(5, 2) })
	x.Axis(1).Parallelize(ParallelTIDx)
	require.Panics(t, func() { x.Split(1, 2) })
}

func TestMerge(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	require.Same(t, x, x.Merge(0, 1))
	require.Equal(t, 1, x.NDims())
	require.Equal(t, int64(32), x.Axis(0).Extent().ConstValue())

	rec := x.History()[0]
	require.Equal(t, TransformMerge, rec.Kind)
	require.Equal(t, -1, rec.In)
	require.Equal(t, x.Axis(0).ID(), rec.Out)

	// The merged axis lands at the smaller position, outer side first.
	y := f.Input("y", dtypes.Float32, 2, 3, 4)
	y.Merge(2, 0)
	require.Equal(t, 2, y.NDims())
	require.Equal(t, int64(8), y.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(3), y.Axis(1).Extent().ConstValue())

	// Merging with a broadcast axis keeps the concrete iteration type.
	b := f.Input("b", dtypes.Float32, 4, 1)
	b.Merge(0, 1)
	require.True(t, b.Axis(0).IsIteration())
	require.Equal(t, int64(4), b.Axis(0).Extent().ConstValue())

	require.Panics(t, func() { x.Merge(0, 0) })
	r := f.Sum(f.Input("z", dtypes.Float32, 4, 8), 1)
	require.Panics(t, func() { r.Merge(0, 1) })
	p := f.Input("p", dtypes.Float32, 4, 8)
	p.Axis(0).Parallelize(ParallelBIDx)
	require.Panics(t, func() { p.Merge(0, 1) })
}

func TestReorder(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 2, 3, 4)
	a, b, c := x.Axis(0), x.Axis(1), x.Axis(2)

	// Unspecified axes fill the remaining slots in order.
	require.Same(t, x, x.Reorder(map[int]int{0: 2}))
	require.Same(t, b, x.Axis(0))
	require.Same(t, c, x.Axis(1))
	require.Same(t, a, x.Axis(2))

	// Negative positions count from the end on both sides.
	x.Reorder(map[int]int{-1: 0, 0: -1})
	require.Same(t, a, x.Axis(0))
	require.Same(t, c, x.Axis(1))
	require.Same(t, b, x.Axis(2))

	require.Panics(t, func() { x.Reorder(map[int]int{0: 1, -3: 2}) })
	require.Panics(t, func() { x.Reorder(map[int]int{0: 1, 1: 1}) })
	require.Panics(t, func() { x.Reorder(map[int]int{3: 0}) })
}

func TestContiguityAndComputeAt(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	require.Equal(t, []bool{true, true}, x.Contiguity())
	x.SetContiguity(true, false)
	require.Equal(t, []bool{true, false}, x.Contiguity())
	require.Panics(t, func() { x.SetContiguity(true) })

	require.False(t, x.HasComputeAt())
	x.SetComputeAtPos(2)
	require.Equal(t, 2, x.ComputeAtPos())
	require.True(t, x.HasComputeAt())
	require.Panics(t, func() { x.SetComputeAtPos(3) })
	require.Panics(t, func() { x.SetComputeAtPos(-1) })
}

func TestTensorViewString(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 128)
	x.Split(0, 32)
	x.Axis(1).Parallelize(ParallelTIDx)
	s := x.String()
	require.Contains(t, s, "x (Float32)")
	require.Contains(t, s, "{32}:TIDx")
}

func TestCacheAfter(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 64)
	y := f.Exp(x)
	f.AddOutput(y)

	cache := x.CacheAfter()
	require.Equal(t, MemoryLocal, cache.MemorySpace())
	require.Equal(t, MemoryGlobal, x.MemorySpace())
	require.Equal(t, []*TensorView{cache}, f.ConsumersOf(x))
	require.Equal(t, []*TensorView{x}, f.ProducersOf(cache))
	require.Equal(t, []*TensorView{cache}, f.ProducersOf(y))
	require.Equal(t, OpTypeSet, f.DefinitionOf(cache).Op())

	// Inputs with no uses cannot be staged.
	unused := f.Input("unused", dtypes.Float32, 4)
	require.Panics(t, func() { unused.CacheAfter() })
}

func TestCacheBefore(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	r := f.Sum(x, 1)
	f.AddOutput(r)

	cache := r.CacheBefore()

	// The cache takes over the reduction domain, r becomes a plain copy.
	require.Equal(t, 2, cache.NDims())
	require.True(t, cache.HasReduction())
	require.Equal(t, 1, r.NDims())
	require.False(t, r.HasReduction())
	require.Equal(t, OpTypeSum, f.DefinitionOf(cache).Op())
	require.Equal(t, OpTypeSet, f.DefinitionOf(r).Op())
	require.True(t, r.IsFusionOutput())
	require.False(t, cache.IsFusionOutput())

	// An existing schedule moves to the cache and replays onto the copy.
	y := f.Exp(x)
	f.AddOutput(y)
	y.Split(0, 2).Split(2, 4)
	yCache := y.CacheBefore()
	require.Equal(t, 4, yCache.NDims())
	require.Equal(t, 4, y.NDims())
	require.Equal(t, int64(2), y.Axis(1).Extent().ConstValue())
	require.Equal(t, int64(4), y.Axis(3).Extent().ConstValue())

	require.Panics(t, func() { x.CacheBefore() })
}

func TestCacheFork(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 16)
	y := f.Exp(x)
	z := f.Neg(y)
	f.AddOutput(y)
	f.AddOutput(z)

	fork := y.CacheFork()
	require.Equal(t, []*TensorView{fork, z}, f.Outputs())
	require.Equal(t, MemoryLocal, y.MemorySpace())
	require.Equal(t, MemoryGlobal, fork.MemorySpace())
	require.False(t, y.IsFusionOutput())
	require.True(t, fork.IsFusionOutput())

	// z still reads the local copy, the fork only receives it.
	require.Equal(t, []*TensorView{y}, f.ProducersOf(z))
	require.Equal(t, []*TensorView{y}, f.ProducersOf(fork))

	require.Panics(t, func() { z.CacheFork() })
	w := f.Neg(x)
	f.AddOutput(w)
	require.Panics(t, func() { w.CacheFork() })
}
