// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matmul schedules matmul kernels with hierarchical tiling: a CTA
// tile per thread block, a warp tile per warp and an instruction tile per
// tensor-core mma instruction. The helpers here realize those tilings on
// operands of a fusion, starting from the canonical [batch, M, N, K] axis
// order.
package matmul

import (
	"github.com/gomlx/exceptions"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

// GemmTile is one tile level of a matmul, in elements.
type GemmTile struct {
	M, N, K int64
}

// Div divides the tile extents elementwise, giving the grid shape of one
// tile level inside another.
func (t GemmTile) Div(o GemmTile) GemmTile {
	return GemmTile{M: t.M / o.M, N: t.N / o.N, K: t.K / o.K}
}

// ToSlice returns the tile extents in [M, N, K] order.
func (t GemmTile) ToSlice() []int64 {
	return []int64{t.M, t.N, t.K}
}

// TileOptions is the full tiling hierarchy of a matmul kernel.
type TileOptions struct {
	CTATile         GemmTile
	WarpTile        GemmTile
	InstructionTile GemmTile
}

// MakeTile splits tv's innermost len(tileSizes) axes by the given sizes and
// groups all outer parts before all inner parts:
//
//	[B0, B1, M, N, K] tiled by {m, n, k} becomes
//	[B0, B1, Mo, No, Ko, Mi, Ni, Ki]
//
// Axes further left, typically batch dimensions, are untouched.
func MakeTile(tv *fusion.TensorView, tileSizes []int64) {
	if tv.NDims() < len(tileSizes) {
		exceptions.Panicf("MakeTile(%s): operand has %d dimensions, fewer than the %d tile sizes",
			tv.Name(), tv.NDims(), len(tileSizes))
	}
	n := len(tileSizes)
	for idx, size := range tileSizes {
		tv.Split(idx-n, size)
	}

	// [.., Mo, Mi, No, Ni, Ko, Ki]: even positions move to the outer group,
	// odd ones to the inner group, keeping order within each group.
	reorder := make(map[int]int, 2*n)
	for idx := 0; idx < 2*n; idx++ {
		reorder[idx-2*n] = (idx%2)*n + idx/2 - 2*n
	}
	tv.Reorder(reorder)
}

// OrderTiledConcreteIDAsRoot reorders the innermost tile axes produced by
// MakeTile back into the operand's root axis order, with broadcast and
// reduction axes leftmost:
//
//	[I0o, I1o, B2o, I1i, I0i, B2i] becomes
//	[I0o, I1o, B2o, B2i, I0i, I1i]
//
// The scan from the innermost position stops at the first axis that is
// neither an inner tile nor broadcast nor reduction; everything further out
// keeps its loop structure. Keeping the inner tiles in root order makes
// later layout and swizzle decisions independent of the tiling order.
func OrderTiledConcreteIDAsRoot(tv *fusion.TensorView) {
	ndims := tv.NDims()
	leftmost := ndims
	rootIDs := rootIDSet(tv)

	// Positions collected innermost-first.
	var broadcastOrReduction []int
	rootToLeafPos := make(map[int]int)
	for ii := ndims - 1; ii >= 0; ii-- {
		d := tv.Axis(ii)
		if d.IsBroadcast() || d.IsReduction() {
			broadcastOrReduction = append(broadcastOrReduction, ii)
			leftmost = ii
			continue
		}
		rootID, ok := innermostTiledRootID(tv, d, rootIDs)
		if !ok {
			break
		}
		if _, dup := rootToLeafPos[rootID]; dup {
			exceptions.Panicf("OrderTiledConcreteIDAsRoot(%s): multiple innermost axes map to the same root axis", tv.Name())
		}
		rootToLeafPos[rootID] = ii
		leftmost = ii
	}

	reorder := make(map[int]int)
	insertPos := leftmost
	for ii := len(broadcastOrReduction) - 1; ii >= 0; ii-- {
		reorder[broadcastOrReduction[ii]] = insertPos
		insertPos++
	}
	for _, d := range tv.MaybeRFactor() {
		if pos, ok := rootToLeafPos[d.ID()]; ok {
			reorder[pos] = insertPos
			insertPos++
		}
	}
	tv.Reorder(reorder)
}

// innermostTiledRootID walks split records upward while the axis stays the
// inner output, resolving an inner tile axis to the root axis it tiles.
// Fails for outer split parts and merged axes.
func innermostTiledRootID(tv *fusion.TensorView, d *fusion.IterDomain, rootIDs sets.Set[int]) (int, bool) {
	recs := tv.History()[tv.RFactorRecords():]
	cur := d.ID()
	for !rootIDs.Has(cur) {
		rec, ok := producingRecord(recs, cur)
		if !ok {
			return 0, false
		}
		if rec.Kind == fusion.TransformSplit && rec.Inner == cur {
			cur = rec.In
			continue
		}
		return 0, false
	}
	return cur, true
}

func rootIDSet(tv *fusion.TensorView) sets.Set[int] {
	ids := sets.Make[int](len(tv.MaybeRFactor()))
	for _, d := range tv.MaybeRFactor() {
		ids.Insert(d.ID())
	}
	return ids
}

func producingRecord(recs []fusion.TransformRecord, id int) (fusion.TransformRecord, bool) {
	for ii := len(recs) - 1; ii >= 0; ii-- {
		rec := recs[ii]
		switch rec.Kind {
		case fusion.TransformSplit:
			if rec.Outer == id || rec.Inner == id {
				return rec, true
			}
		case fusion.TransformMerge:
			if rec.Out == id {
				return rec, true
			}
		}
	}
	return fusion.TransformRecord{}, false
}

// checkDimSize verifies the extents of tv's axes at the given positions, a
// guard for the fixed layouts the tiling schedules assume.
func checkDimSize(tv *fusion.TensorView, positions []int, expect []int64) {
	if len(positions) != len(expect) {
		exceptions.Panicf("checkDimSize(%s): %d positions but %d expected sizes",
			tv.Name(), len(positions), len(expect))
	}
	ev := tv.Fusion().NewEvaluator()
	for ii, pos := range positions {
		d := tv.Axis(pos)
		extent, err := ev.Evaluate(d.Extent())
		if err != nil {
			exceptions.Panicf("checkDimSize(%s): extent of axis %s cannot be resolved", tv.Name(), d)
		}
		if extent != expect[ii] {
			exceptions.Panicf("checkDimSize(%s): axis %s has extent %d, expected %d",
				tv.Name(), d, extent, expect[ii])
		}
	}
}
