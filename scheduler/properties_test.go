// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
)

func TestGetPropertiesInnerReduction(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 1024, 64)
	r := f.Sum(x, 1)
	f.AddOutput(f.Exp(r))
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)

	props, err := GetProperties(ri, r)
	require.NoError(t, err)
	require.Equal(t, int64(64), props.TotalReductionNumel)
	require.Equal(t, int64(1024), props.TotalIterationNumel)
	require.True(t, props.FastestDimReduction)
	require.Equal(t, int64(64), props.InnerMostDimensionNumel)
	require.Equal(t, int64(1), props.InnerMostDimensionNdims)
	require.Equal(t, int64(2), props.Dimensionality)
}

func TestGetPropertiesOuterReduction(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 1024, 64)
	r := f.Sum(x, 0)
	f.AddOutput(f.Exp(r))
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)

	props, err := GetProperties(ri, r)
	require.NoError(t, err)
	require.Equal(t, int64(1024), props.TotalReductionNumel)
	require.Equal(t, int64(64), props.TotalIterationNumel)
	require.False(t, props.FastestDimReduction)
	require.Equal(t, int64(64), props.InnerMostDimensionNumel)
	require.Equal(t, int64(2), props.Dimensionality)
}

func TestGetPropertiesRuns(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 8, 16, 4)
	r := f.Sum(x, 1, 2)
	f.AddOutput(f.Exp(r))
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)

	// Both reduction axes form one innermost run.
	props, err := GetProperties(ri, r)
	require.NoError(t, err)
	require.Equal(t, int64(64), props.TotalReductionNumel)
	require.Equal(t, int64(8), props.TotalIterationNumel)
	require.Equal(t, int64(64), props.InnerMostDimensionNumel)
	require.Equal(t, int64(2), props.InnerMostDimensionNdims)
	require.Equal(t, int64(2), props.Dimensionality)

	// Broadcast axes do not break a run.
	g := fusion.New()
	b := g.Input("b", dtypes.Float32, 8, 1, 4)
	rb := g.Sum(b, 2)
	g.AddOutput(g.Exp(rb))
	ri = NewRuntimeInfo(g.NewEvaluator(), dtypes.Int32)
	props, err = GetProperties(ri, rb)
	require.NoError(t, err)
	require.True(t, props.FastestDimReduction)
	require.Equal(t, int64(8), props.TotalIterationNumel)
	require.Equal(t, int64(2), props.Dimensionality)
}

func TestGetPropertiesSymbolic(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, fusion.Symbolic, 64)
	r := f.Sum(x, 1)
	f.AddOutput(f.Exp(r))

	ev := f.NewEvaluator()
	ri := NewRuntimeInfo(ev, dtypes.Int32)
	_, err := GetProperties(ri, r)
	require.ErrorContains(t, err, "not bound")

	require.NoError(t, ev.BindExtentsOf(x, 512, 64))
	props, err := GetProperties(ri, r)
	require.NoError(t, err)
	require.Equal(t, int64(512), props.TotalIterationNumel)
	require.Equal(t, int64(64), props.TotalReductionNumel)
}
