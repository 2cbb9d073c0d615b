// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
	"github.com/gomlx/gofuser/scheduler"
	"github.com/gomlx/gofuser/scheduler/matmul"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
)

// reportProperties prints the shape properties a reduction heuristic starts
// from, for a [1024, 64] row reduction, and then shows dimension
// canonicalization collapsing an interleaved 4D reduction to 2D.
func reportProperties() {
	fmt.Println(titleStyle.Render("Reduction Properties"))
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 1024, 64)
	total := f.Sum(x, 1)
	f.AddOutput(total)
	fmt.Println(f)

	ri := scheduler.NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)
	props := must.M1(scheduler.GetProperties(ri, total))
	table := newPlainTable(false)
	table.Row("total reduction elements", humanize.Comma(props.TotalReductionNumel))
	table.Row("total iteration elements", humanize.Comma(props.TotalIterationNumel))
	table.Row("fastest dim reduction", fmt.Sprintf("%v", props.FastestDimReduction))
	table.Row("innermost dim elements", humanize.Comma(props.InnerMostDimensionNumel))
	table.Row("innermost dim rank", humanize.Comma(props.InnerMostDimensionNdims))
	table.Row("dimensionality", humanize.Comma(props.Dimensionality))
	fmt.Println(table.Render())

	// Canonicalization: reductions over axes 1 and 3 interleave with the
	// kept axes, and merging brings them back to one of each kind.
	f2 := fusion.New()
	y := f2.Input("y", dtypes.Float32, 8, 128, 16, 4)
	kept := f2.Sum(y, 1, 3)
	f2.AddOutput(kept)
	fmt.Printf("before canonicalization: %s\n", kept)
	scheduler.CanonicalDimReduction(kept, false)
	fmt.Printf("after canonicalization:  %s\n\n", kept)
}

// reportPersistence prints the persistent buffer analysis of a scaled
// softmax: the scaled operand and the exponentials are read again after
// their row reductions, so a persistent kernel keeps both rows live.
func reportPersistence() {
	fmt.Println(titleStyle.Render("Persistent Buffers"))
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 1024, 4096)
	w := f.Input("w", dtypes.Float32, 1024, 4096)
	scaled := f.Mul(x, w)
	peak := f.Max(scaled, 1)
	shifted := f.Sub(scaled, f.Broadcast(peak, false, true))
	exps := f.Exp(shifted)
	sums := f.Sum(exps, 1)
	soft := f.Div(exps, f.Broadcast(sums, false, true))
	f.AddOutput(soft)
	fmt.Println(f)

	summary := scheduler.NewHeuristicSummary(f)
	info := scheduler.PersistentBuffers(f, summary)
	projectable := sets.MakeWith(info.ProjectablePersistentBuffers...)
	table := newPlainTable(true)
	table.Row("Buffer", "Projectable", "Resolved At")
	for _, buffer := range info.PersistentBuffers {
		points := make([]string, 0, len(info.ResolutionPoints[buffer]))
		for _, point := range info.ResolutionPoints[buffer] {
			points = append(points, point.Name())
		}
		table.Row(buffer.Name(),
			fmt.Sprintf("%v", projectable.Has(buffer)),
			strings.Join(points, ", "))
	}
	fmt.Println(table.Render())

	ri := scheduler.NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)
	sizes := must.M1(scheduler.PersistentBufferSize(f, ri, info, summary))
	sizeTable := newPlainTable(false)
	sizeTable.Row("persistent size", humanize.IBytes(uint64(sizes.PersistentBufferSize)))
	sizeTable.Row("projected to inputs", humanize.IBytes(uint64(sizes.ProjectedPersistentBufferSize)))
	sizeTable.Row("register file", humanize.IBytes(uint64(scheduler.RegisterFileSize)))
	fits := "no"
	if sizes.PersistentBufferSize <= scheduler.RegisterFileSize {
		fits = "yes"
	}
	sizeTable.Row("fits in registers", fits)
	fmt.Println(sizeTable.Render())
}

// reportBroadcast prints the broadcast multiples of a mixed-precision
// pointwise fusion: per root position of the reference output, how many
// bytes of operands are indexed by the axes on each side. Schedulers use
// this to place the break between parallelized and serial axes where the
// most bytes vectorize.
func reportBroadcast() {
	fmt.Println(titleStyle.Render("Broadcast Multiples"))
	f := fusion.New()
	values := f.Input("values", dtypes.Float32, 128, 256)
	rowScale := f.Input("rowScale", dtypes.Float16, 128)
	colShift := f.Input("colShift", dtypes.Float64, 256)
	mask := f.Input("mask", dtypes.Uint8)
	scaled := f.Mul(values, f.Broadcast(rowScale, false, true))
	shifted := f.Add(scaled, f.Broadcast(colShift, true, false))
	quantized := f.Add(f.Broadcast(mask, true, true), shifted)
	f.AddOutput(quantized)
	fmt.Println(f)

	summary := scheduler.NewHeuristicSummary(f)
	multiples := scheduler.GetBroadcastMultiples(quantized, dtypes.Int32, summary)
	table := newPlainTable(true)
	table.Row("Position", "Axis", "LHS Bytes", "RHS Bytes")
	root := quantized.Root()
	for ii, m := range multiples {
		table.Row(humanize.Comma(int64(ii)), root[ii].String(),
			humanize.Comma(m.LhsMultiple), humanize.Comma(m.RhsMultiple))
	}
	fmt.Println(table.Render())
	fmt.Printf("break after position 0: lhs=%d, rhs=%d bytes per element\n\n",
		multiples[0].LhsMultiple, multiples[1].RhsMultiple)
}

// reportMatmul prints the hierarchical tiling of a half-precision matmul:
// CTA tile, warp tile and instruction tile, plus the vectorized load
// schedule of the staged A operand.
func reportMatmul() {
	fmt.Println(titleStyle.Render("Matmul Tiling"))
	f := fusion.New()
	a := f.Input("a", dtypes.Float16, 1024, 2048) // [M, K]
	b := f.Input("b", dtypes.Float16, 512, 2048)  // [N, K]
	mma := f.Mma(f.Broadcast(a, false, true, false), f.Broadcast(b, true, false, false), 2)
	f.AddOutput(mma)
	fmt.Println(f)

	tile := matmul.TileOptions{
		CTATile:         matmul.GemmTile{M: 128, N: 128, K: 32},
		WarpTile:        matmul.GemmTile{M: 64, N: 64, K: 32},
		InstructionTile: matmul.GemmTile{M: 16, N: 16, K: 16},
	}
	warpDims := tile.CTATile.Div(tile.WarpTile)
	numWarps := warpDims.M * warpDims.N * warpDims.K
	table := newPlainTable(true)
	table.Row("Level", "M", "N", "K")
	table.Row("cta", humanize.Comma(tile.CTATile.M), humanize.Comma(tile.CTATile.N), humanize.Comma(tile.CTATile.K))
	table.Row("warp", humanize.Comma(tile.WarpTile.M), humanize.Comma(tile.WarpTile.N), humanize.Comma(tile.WarpTile.K))
	table.Row("instruction", humanize.Comma(tile.InstructionTile.M), humanize.Comma(tile.InstructionTile.N), humanize.Comma(tile.InstructionTile.K))
	fmt.Println(table.Render())
	fmt.Printf("%s warps, %s threads per cta\n\n",
		humanize.Comma(numWarps), humanize.Comma(numWarps*32))

	aCache := a.CacheAfter()
	matmul.CanonicalizeMmaTvOrdering(mma)
	fmt.Printf("mma output:   %s\n", mma)
	matmul.MakeTile(mma, tile.CTATile.ToSlice())
	fmt.Printf("cta tiling:   %s\n", mma)
	matmul.ScheduleWarpTileWithReduction(mma, tile)
	mma.Axis(0).Parallelize(fusion.ParallelBIDy)
	mma.Axis(1).Parallelize(fusion.ParallelBIDx)
	mma.Axis(-7).Parallelize(fusion.ParallelTIDz)
	mma.Axis(-6).Parallelize(fusion.ParallelTIDy)
	fmt.Printf("warp tiling:  %s\n", mma)

	// Stage A through a vectorized 16 byte load, 8 half elements per thread.
	matmul.ScheduleContiguousVectorLoad(aCache, tile, 8, true)
	fmt.Printf("a staging:    %s\n\n", aCache)
}
