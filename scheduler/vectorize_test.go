// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
)

func TestInnerMostRootDim(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	require.Same(t, x.Root()[1], InnerMostRootDim(x))

	// Broadcast axes only count when nothing faster exists.
	b := f.Input("b", dtypes.Float32, 4, 1)
	require.Same(t, b.Root()[0], InnerMostRootDim(b))
	bb := f.Input("bb", dtypes.Float32, 1, 1)
	require.Same(t, bb.Root()[1], InnerMostRootDim(bb))

	scalar := f.Input("scalar", dtypes.Float32)
	require.Nil(t, InnerMostRootDim(scalar))

	// A reduction axis can be the innermost dimension.
	r := f.Sum(x, 1)
	require.Same(t, r.Root()[1], InnerMostRootDim(r))
	f.AddOutput(f.Exp(r))
}

func TestFindAllMappedDims(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	r := f.Sum(x, 1)
	e := f.Exp(r)
	bc := f.Broadcast(e, false, true)
	out := f.Sub(x, bc)
	f.AddOutput(out)

	// The reduced dimension maps across the reduction and aligns with the
	// broadcast axis, but never reaches the reduction-sized operands in
	// between.
	mapped := FindAllMappedDims(x, x.Root()[1], false)
	require.Len(t, mapped, 4)
	require.True(t, mapped.Has(x.Root()[1]))
	require.True(t, mapped.Has(r.Root()[1]))
	require.True(t, mapped.Has(out.Root()[1]))
	require.True(t, mapped.Has(bc.Root()[1]))
	require.False(t, mapped.Has(e.Root()[0]))
}

func TestFindAllMappedDimsThroughView(t *testing.T) {
	f := fusion.New()
	y := f.Input("y", dtypes.Float32, 4, 8)
	v := f.View(y, 32)
	z := f.Neg(v)
	f.AddOutput(z)

	// The vectorize pass projects through the view's merge; the plain pass
	// stops at it.
	mapped := FindAllMappedDims(y, y.Root()[1], true)
	require.True(t, mapped.Has(z.Root()[0]))
	require.Len(t, mapped, 3)

	mapped = FindAllMappedDims(y, y.Root()[1], false)
	require.Len(t, mapped, 2)
	require.False(t, mapped.Has(z.Root()[0]))
}

func TestHasInnerDim(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	r := f.Sum(x, 1)
	f.AddOutput(f.Exp(r))

	mapped := FindAllMappedDims(r, InnerMostRootDim(r), true)
	require.True(t, HasInnerDim(x, mapped, false))
	require.True(t, HasInnerDim(x, mapped, true))

	// The reference's own innermost axis is a reduction: never vectorized.
	require.False(t, HasInnerDim(r, mapped, false))

	// Without contiguity there is no vectorized access.
	x.SetContiguity(true, false)
	require.True(t, HasInnerDim(x, mapped, false))
	require.False(t, HasInnerDim(x, mapped, true))
}

func TestGetInputsOutputsWithInnerDim(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 4, 8)
	r := f.Sum(x, 1)
	e := f.Exp(r)
	bc := f.Broadcast(e, false, true)
	out := f.Sub(x, bc)
	f.AddOutput(out)

	vectorizable := GetInputsOutputsWithInnerDim(r, true, true, nil)
	require.Equal(t, []*fusion.TensorView{x, out}, vectorizable)

	unrollable := GetInputsOutputsWithInnerDim(r, false, false, nil)
	require.Equal(t, []*fusion.TensorView{x, out}, unrollable)

	// Memoized per combination.
	summary := NewHeuristicSummary(f)
	first := GetInputsOutputsWithInnerDim(r, true, true, summary)
	second := GetInputsOutputsWithInnerDim(r, true, true, summary)
	require.Equal(t, first, second)

	require.Panics(t, func() { GetInputsOutputsWithInnerDim(r, false, true, nil) })
}

func TestGetBroadcastMultiples(t *testing.T) {
	f := fusion.New()
	values := f.Input("values", dtypes.Float32, 128, 256)
	rowScale := f.Input("rowScale", dtypes.Float16, 128)
	colShift := f.Input("colShift", dtypes.Float64, 256)
	mask := f.Input("mask", dtypes.Uint8)

	scaled := f.Mul(values, f.Broadcast(rowScale, false, true))
	shifted := f.Add(scaled, f.Broadcast(colShift, true, false))
	quantized := f.Add(f.Broadcast(mask, true, true), shifted)
	f.AddOutput(quantized)
	require.Equal(t, dtypes.Uint8, quantized.DType())

	multiples := GetBroadcastMultiples(quantized, dtypes.Int32, nil)
	require.Len(t, multiples, 2)

	// Position 0: values (4) + rowScale (2) + quantized (1) on the left,
	// everything mapped on the right.
	require.Equal(t, int64(7), multiples[0].LhsMultiple)
	require.Equal(t, int64(15), multiples[0].RhsMultiple)

	// Position 1: the mirror image, with colShift (8) instead of rowScale.
	require.Equal(t, int64(15), multiples[1].LhsMultiple)
	require.Equal(t, int64(13), multiples[1].RhsMultiple)
}

func TestCollectMaxVectorizeSizeWithContigMerge(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 8, 6)
	f.AddOutput(f.Exp(x))
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)

	// Fully contiguous: the whole 48-element extent is divisible by 4.
	width, err := CollectMaxVectorizeSizeWithContigMerge(x, 16, ri)
	require.NoError(t, err)
	require.Equal(t, int64(4), width)

	// Discontiguous outer axis: only the innermost extent of 6 counts.
	x.SetContiguity(false, true)
	width, err = CollectMaxVectorizeSizeWithContigMerge(x, 16, ri)
	require.NoError(t, err)
	require.Equal(t, int64(2), width)

	require.Panics(t, func() { CollectMaxVectorizeSizeWithContigMerge(x, 2, ri) })
}
