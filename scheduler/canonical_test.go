// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

func TestMergeReduction(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 8, 16, 4, 32)
	r := f.Sum(x, 1, 3)
	f.AddOutput(f.Exp(r))

	none := sets.Make[*fusion.IterDomain]()
	require.Equal(t, 2, MergeReduction(r, none))
	require.Equal(t, 3, r.NDims())
	require.True(t, r.Axis(-1).IsReduction())
	require.Equal(t, int64(512), r.Axis(-1).Extent().ConstValue())

	require.Equal(t, 2, MergeNonReduction(r, none))
	require.Equal(t, 2, r.NDims())
	require.False(t, r.Axis(0).IsReduction())
	require.Equal(t, int64(32), r.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(512), r.Axis(1).Extent().ConstValue())

	// No mergeable axes left.
	e := f.Exp(x)
	require.Equal(t, 0, MergeReduction(e, none))
}

func TestCanonicalDimReduction(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 8, 16, 4, 32)
	r := f.Sum(x, 1, 3)
	f.AddOutput(f.Exp(r))

	hasIter, hasRed := CanonicalDimReduction(r, false)
	require.True(t, hasIter)
	require.True(t, hasRed)
	require.Equal(t, 2, r.NDims())
	require.False(t, r.Axis(0).IsReduction())
	require.True(t, r.Axis(1).IsReduction())
}

func TestCanonicalDimReductionTrivial(t *testing.T) {
	f := fusion.New()
	b := f.Input("b", dtypes.Float32, 4, 1)
	rb := f.Sum(b, 1)
	f.AddOutput(f.Neg(rb))

	// The trivial reduction never merges and keeps its position.
	hasIter, hasRed := CanonicalDimReduction(rb, false)
	require.True(t, hasIter)
	require.False(t, hasRed)
	require.Equal(t, 2, rb.NDims())
	require.True(t, rb.Axis(1).IsTrivialReduction())
}

func TestCanonicalDimReduction3D(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 4, 8, 16, 2)
	r := f.Sum(x, 1, 2)
	f.AddOutput(f.Exp(r))

	hasIter, hasRed := CanonicalDimReduction(r, true)
	require.True(t, hasIter)
	require.True(t, hasRed)
	require.Equal(t, 3, r.NDims())
	require.False(t, r.Axis(0).IsReduction())
	require.True(t, r.Axis(1).IsReduction())
	require.False(t, r.Axis(2).IsReduction())
	require.Equal(t, int64(128), r.Axis(1).Extent().ConstValue())

	// An inner reduction has two runs, not three.
	g := fusion.New()
	y := g.Input("y", dtypes.Float32, 4, 8)
	r2 := g.Sum(y, 1)
	g.AddOutput(g.Exp(r2))
	require.Panics(t, func() { CanonicalDimReduction(r2, true) })
}
