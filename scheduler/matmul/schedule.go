// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"github.com/gomlx/exceptions"

	"github.com/gomlx/gofuser/fusion"
)

// ScheduleContiguousVectorLoad spreads all the threads of a CTA tile over
// tv's innermost dimension to load it cooperatively, each thread moving
// vectorWord elements at a time. With vectorize the per-thread word is
// tagged for vectorized access, otherwise it stays a serial inner loop.
func ScheduleContiguousVectorLoad(tv *fusion.TensorView, tile TileOptions, vectorWord int64, vectorize bool) {
	warpDims := tile.CTATile.Div(tile.WarpTile)
	numThreads := warpDims.M * warpDims.N * warpDims.K * 32

	tv.Split(-1, numThreads*vectorWord)
	tv.Split(-1, vectorWord)
	// [.., thread, vec]
	tv.Split(-2, 32)
	//  -3    -2    -1
	// [warp, lane, vec]
	if warpDims.K == 1 {
		//  -4     -3     -2    -1
		// [warpM, warpN, lane, vec]
		tv.Split(-3, warpDims.N)
	} else {
		//  -4      -3     -2    -1
		// [warpMN, warpK, lane, vec]
		tv.Split(-3, warpDims.K)
	}

	if vectorize {
		tv.Axis(-1).Parallelize(fusion.ParallelVectorize)
	}
	tv.Axis(-2).Parallelize(fusion.ParallelTIDx)
	tv.Axis(-3).Parallelize(fusion.ParallelTIDy)
	tv.Axis(-4).Parallelize(fusion.ParallelTIDz)
}

// ScheduleWarpTileWithReduction tiles an mma result over warps and
// instructions. tv's three innermost axes must be the CTA tile [M, N, K];
// they end up as [Kwo, Mwo, Nwo, Mw, Nw, Mi, Ni, Ki] when one warp covers
// the whole K extent, or [Mwo, Nwo, Kwo, Mw, Nw, Kw, Mi, Ni, Ki] when K is
// split over warps.
func ScheduleWarpTileWithReduction(tv *fusion.TensorView, tile TileOptions) {
	cta, warp, instr := tile.CTATile, tile.WarpTile, tile.InstructionTile
	if cta.K%warp.K != 0 {
		exceptions.Panicf("ScheduleWarpTileWithReduction(%s): the number of warps on the K dimension must be an integer",
			tv.Name())
	}
	numWarpK := cta.K / warp.K

	checkDimSize(tv, []int{-3, -2, -1}, []int64{cta.M, cta.N, cta.K})

	if numWarpK == 1 {
		//  -3   -2   -1
		// [M,   N,   K]
		tv.Split(-3, warp.M)
		tv.Split(-2, warp.N)
		//  -5   -4   -3   -2   -1
		// [Mwo  Mw   Nwo  Nw   K]
		tv.Split(-4, instr.M)
		tv.Split(-2, instr.N)
		tv.Split(-1, instr.K)
		//  -8   -7   -6   -5   -4   -3   -2   -1
		// [Mwo  Mw   Mi   Nwo  Nw   Ni   Kwo  Ki]
		tv.Reorder(map[int]int{-7: -5, -6: -3, -5: -6, -3: -2, -2: -8, -8: -7})
		//  -8   -7   -6   -5   -4   -3   -2   -1
		// [Kwo  Mwo  Nwo  Mw   Nw   Mi   Ni   Ki]
	} else {
		// Splitting K over warps needs a warp-level K axis for the cross
		// warp reduction.
		tv.Split(-3, warp.M)
		tv.Split(-2, warp.N)
		tv.Split(-1, warp.K)
		//  -6   -5   -4   -3   -2   -1
		// [Mwo  Mw   Nwo  Nw   Kwo  Kw]
		tv.Split(-5, instr.M)
		tv.Split(-3, instr.N)
		tv.Split(-1, instr.K)
		//  -9   -8   -7   -6   -5   -4   -3   -2   -1
		// [Mwo  Mw   Mi   Nwo  Nw   Ni   Kwo  Kw   Ki]
		tv.Reorder(map[int]int{-8: -6, -7: -3, -6: -8, -4: -2, -3: -7, -2: -4})
		//  -9   -8   -7   -6   -5   -4   -3   -2   -1
		// [Mwo  Nwo  Kwo  Mw   Nw   Kw   Mi   Ni   Ki]
	}
}

// ScheduleWarpTileWithNoReduction realizes the same warp and instruction
// tiling as ScheduleWarpTileWithReduction on an operand without the K axis,
// typically the mma epilogue. tv's two innermost axes must be the CTA tile
// [M, N]; they end up as [Mwo, Nwo, Mw, Nw, Mi, Ni].
func ScheduleWarpTileWithNoReduction(tv *fusion.TensorView, tile TileOptions) {
	cta, warp, instr := tile.CTATile, tile.WarpTile, tile.InstructionTile
	if cta.K%warp.K != 0 {
		exceptions.Panicf("ScheduleWarpTileWithNoReduction(%s): the number of warps on the K dimension must be an integer",
			tv.Name())
	}
	numWarpK := cta.K / warp.K

	checkDimSize(tv, []int{-2, -1}, []int64{cta.M, cta.N})

	//  -2   -1
	// [M,   N]
	tv.Split(-2, warp.M)
	tv.Split(-1, warp.N)
	//  -4   -3   -2   -1
	// [Mwo  Mw   Nwo  Nw]
	tv.Split(-3, instr.M)
	tv.Split(-1, instr.N)
	//  -6   -5   -4   -3   -2   -1
	// [Mwo  Mw   Mi   Nwo  Nw   Ni]
	tv.Reorder(map[int]int{-5: -4, -4: -2, -3: -5, -2: -3})
	//  -6   -5   -4   -3   -2   -1
	// [Mwo  Nwo  Mw   Nw   Mi   Ni]

	if numWarpK != 1 {
		// The K warps still exist in the block; carve their dimension out of
		// the M warps so the thread layout matches the main loop.
		tv.Split(-6, numWarpK)
		//  -7    -6   -5   -4   -3   -2   -1
		// [Mwoo  Kw   Nwo  Mw   Nw   Mi   Ni]
	}
}

// CanonicalizeMmaTvOrdering reorders an mma output's root axes into
// [batch, prior reduction, M, N, K] order, keeping the original order
// within each group. tv must be the direct output of an mma expression and
// still unscheduled: every leaf axis must be a root axis, since the roles
// are only defined there.
func CanonicalizeMmaTvOrdering(tv *fusion.TensorView) {
	f := tv.Fusion()
	mma, ok := f.DefinitionOf(tv).(*fusion.MmaOp)
	if !ok {
		exceptions.Panicf("CanonicalizeMmaTvOrdering(%s): only mma outputs are supported", tv.Name())
	}

	rootIDs := rootIDSet(tv)
	c2pA := fusion.MapConsumerToProducer(tv, mma.A())
	c2pB := fusion.MapConsumerToProducer(tv, mma.B())

	var batchPos, prevReductionPos, mPos, nPos, kPos []int
	for ii := 0; ii < tv.NDims(); ii++ {
		d := tv.Axis(ii)
		if !rootIDs.Has(d.ID()) {
			exceptions.Panicf("CanonicalizeMmaTvOrdering(%s): %s is not a root axis", tv.Name(), d)
		}
		aAxis, bAxis := c2pA[d], c2pB[d]
		switch {
		case d.IsReduction() && aAxis != nil && bAxis != nil:
			kPos = append(kPos, ii)
		case d.IsReduction():
			prevReductionPos = append(prevReductionPos, ii)
		case aAxis != nil && bAxis != nil && !aAxis.IsBroadcast() && bAxis.IsBroadcast():
			mPos = append(mPos, ii)
		case aAxis != nil && bAxis != nil && aAxis.IsBroadcast() && !bAxis.IsBroadcast():
			nPos = append(nPos, ii)
		default:
			batchPos = append(batchPos, ii)
		}
	}

	reorder := make(map[int]int, tv.NDims())
	currentPos := 0
	for _, group := range [][]int{batchPos, prevReductionPos, mPos, nPos, kPos} {
		for _, pos := range group {
			reorder[pos] = currentPos
			currentPos++
		}
	}
	tv.Reorder(reorder)
}

