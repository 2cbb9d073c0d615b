// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
)

func leafExtents(tv *fusion.TensorView) []int64 {
	extents := make([]int64, tv.NDims())
	for ii := range extents {
		extents[ii] = tv.Axis(ii).Extent().ConstValue()
	}
	return extents
}

// mmaFixture builds a canonical [M, N, rK] mma output from two rank-2
// inputs broadcast against each other.
func mmaFixture(m, n, k int64) *fusion.TensorView {
	f := fusion.New()
	a := f.Input("a", dtypes.Float16, m, k)
	b := f.Input("b", dtypes.Float16, n, k)
	lhs := f.Broadcast(a, false, true, false)
	rhs := f.Broadcast(b, true, false, false)
	mma := f.Mma(lhs, rhs, 2)
	f.AddOutput(mma)
	return mma
}

func TestGemmTile(t *testing.T) {
	cta := GemmTile{M: 128, N: 128, K: 32}
	warp := GemmTile{M: 64, N: 64, K: 32}
	require.Equal(t, GemmTile{M: 2, N: 2, K: 1}, cta.Div(warp))
	require.Equal(t, []int64{64, 64, 32}, warp.ToSlice())
}

func TestMakeTile(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 2, 128, 128, 64)
	f.AddOutput(f.Exp(x))

	MakeTile(x, []int64{64, 32, 16})
	// [B, Mo, No, Ko, Mi, Ni, Ki], batch untouched.
	require.Equal(t, []int64{2, 2, 4, 4, 64, 32, 16}, leafExtents(x))

	y := f.Input("y", dtypes.Float32, 8, 8)
	require.Panics(t, func() { MakeTile(y, []int64{4, 4, 4}) })
}

func TestOrderTiledConcreteIDAsRoot(t *testing.T) {
	f := fusion.New()
	y := f.Input("y", dtypes.Float32, 64, 32)
	f.AddOutput(f.Exp(y))

	MakeTile(y, []int64{16, 8})
	require.Equal(t, []int64{4, 4, 16, 8}, leafExtents(y))

	// Swap the inner tiles out of root order, then restore them.
	y.Reorder(map[int]int{-2: -1, -1: -2})
	require.Equal(t, []int64{4, 4, 8, 16}, leafExtents(y))
	OrderTiledConcreteIDAsRoot(y)
	require.Equal(t, []int64{4, 4, 16, 8}, leafExtents(y))
}

func TestOrderTiledConcreteIDAsRootBroadcast(t *testing.T) {
	f := fusion.New()
	w := f.Input("w", dtypes.Float32, 8, 16)
	bc := f.Broadcast(w, false, false, true)
	f.AddOutput(f.Exp(bc))

	MakeTile(bc, []int64{4, 2, 4})
	require.Equal(t, []int64{2, 8, 1, 4, 2, 4}, leafExtents(bc))

	bc.Reorder(map[int]int{3: 4, 4: 3})
	OrderTiledConcreteIDAsRoot(bc)

	// Broadcast tiles go leftmost of the inner block, concrete tiles follow
	// in root order.
	require.Equal(t, []int64{2, 8, 1, 4, 4, 2}, leafExtents(bc))
	require.True(t, bc.Axis(2).IsBroadcast())
	require.True(t, bc.Axis(3).IsBroadcast())
	require.False(t, bc.Axis(4).IsBroadcast())
}

func TestCanonicalizeMmaTvOrdering(t *testing.T) {
	f := fusion.New()
	a0 := f.Input("a0", dtypes.Float16, 4, 8)
	b0 := f.Input("b0", dtypes.Float16, 4, 16)
	a := f.Broadcast(a0, false, true, false)
	b := f.Broadcast(b0, false, false, true)
	mma := f.Mma(a, b, 0)
	f.AddOutput(mma)

	// Root comes out as [rK, N, M].
	require.True(t, mma.Axis(0).IsReduction())
	CanonicalizeMmaTvOrdering(mma)
	require.Equal(t, []int64{8, 16, 4}, leafExtents(mma))
	require.False(t, mma.Axis(0).IsReduction())
	require.False(t, mma.Axis(1).IsReduction())
	require.True(t, mma.Axis(2).IsReduction())

	// Only unscheduled mma outputs are supported.
	require.Panics(t, func() { CanonicalizeMmaTvOrdering(a) })
	mma.Split(0, 2)
	require.Panics(t, func() { CanonicalizeMmaTvOrdering(mma) })
}

func TestScheduleWarpTileWithReduction(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 32},
		InstructionTile: GemmTile{M: 16, N: 16, K: 16},
	}

	mma := mmaFixture(128, 128, 32)
	CanonicalizeMmaTvOrdering(mma)
	MakeTile(mma, tile.CTATile.ToSlice())
	require.Equal(t, []int64{1, 1, 1, 128, 128, 32}, leafExtents(mma))

	ScheduleWarpTileWithReduction(mma, tile)
	// [Mo, No, Ko, Kwo, Mwo, Nwo, Mw, Nw, Mi, Ni, Ki]
	require.Equal(t, 11, mma.NDims())
	require.Equal(t, []int64{1, 1, 1, 2, 2, 2, 4, 4, 16, 16, 16}, leafExtents(mma))
	require.True(t, mma.Axis(-1).IsReduction())
	require.False(t, mma.Axis(-3).IsReduction())
}

func TestScheduleWarpTileWithReductionSplitK(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 16},
		InstructionTile: GemmTile{M: 16, N: 16, K: 8},
	}

	mma := mmaFixture(128, 128, 32)
	CanonicalizeMmaTvOrdering(mma)
	MakeTile(mma, tile.CTATile.ToSlice())

	ScheduleWarpTileWithReduction(mma, tile)
	// [Mo, No, Ko, Mwo, Nwo, Kwo, Mw, Nw, Kw, Mi, Ni, Ki]
	require.Equal(t, 12, mma.NDims())
	require.Equal(t, []int64{1, 1, 1, 2, 2, 2, 4, 4, 2, 16, 16, 8}, leafExtents(mma))
}

func TestScheduleWarpTileWithReductionPanics(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 32},
		InstructionTile: GemmTile{M: 16, N: 16, K: 16},
	}

	mma := mmaFixture(128, 128, 32)
	CanonicalizeMmaTvOrdering(mma)
	MakeTile(mma, []int64{64, 64, 32})
	require.Panics(t, func() { ScheduleWarpTileWithReduction(mma, tile) })

	badWarpK := tile
	badWarpK.WarpTile.K = 24
	require.Panics(t, func() { ScheduleWarpTileWithReduction(mma, badWarpK) })
}

func TestScheduleWarpTileWithNoReduction(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 32},
		InstructionTile: GemmTile{M: 16, N: 16, K: 16},
	}

	f := fusion.New()
	e := f.Input("epilogue", dtypes.Float32, 128, 128)
	f.AddOutput(f.Exp(e))

	ScheduleWarpTileWithNoReduction(e, tile)
	// [Mwo, Nwo, Mw, Nw, Mi, Ni]
	require.Equal(t, []int64{2, 2, 4, 4, 16, 16}, leafExtents(e))
}

func TestScheduleWarpTileWithNoReductionSplitK(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 16},
		InstructionTile: GemmTile{M: 16, N: 16, K: 16},
	}

	f := fusion.New()
	e := f.Input("epilogue", dtypes.Float32, 128, 128)
	f.AddOutput(f.Exp(e))

	ScheduleWarpTileWithNoReduction(e, tile)
	// The K warps carve a dimension out of the outer M warps.
	require.Equal(t, []int64{1, 2, 2, 4, 4, 16, 16}, leafExtents(e))
}

func TestScheduleContiguousVectorLoad(t *testing.T) {
	tile := TileOptions{
		CTATile:         GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        GemmTile{M: 64, N: 64, K: 32},
		InstructionTile: GemmTile{M: 16, N: 16, K: 16},
	}

	f := fusion.New()
	in := f.Input("in", dtypes.Float16, 1024, 2048)
	f.AddOutput(f.Exp(in))
	cache := in.CacheAfter()

	ScheduleContiguousVectorLoad(cache, tile, 8, true)
	// 2x2 warps of 32 threads, 8 elements per thread.
	require.Equal(t, []int64{1024, 2, 2, 2, 32, 8}, leafExtents(cache))
	require.Equal(t, fusion.ParallelVectorize, cache.Axis(-1).ParallelType())
	require.Equal(t, fusion.ParallelTIDx, cache.Axis(-2).ParallelType())
	require.Equal(t, fusion.ParallelTIDy, cache.Axis(-3).ParallelType())
	require.Equal(t, fusion.ParallelTIDz, cache.Axis(-4).ParallelType())

	f2 := fusion.New()
	in2 := f2.Input("in", dtypes.Float16, 1024, 2048)
	f2.AddOutput(f2.Exp(in2))
	cache2 := in2.CacheAfter()

	ScheduleContiguousVectorLoad(cache2, tile, 8, false)
	require.Equal(t, fusion.ParallelSerial, cache2.Axis(-1).ParallelType())
	require.Equal(t, fusion.ParallelTIDx, cache2.Axis(-2).ParallelType())
}
