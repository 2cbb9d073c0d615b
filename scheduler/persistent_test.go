// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gofuser/fusion"
)

// softmaxFusion builds x -> max -> sub -> exp -> sum -> div over [rows,
// cols], reducing the columns.
func softmaxFusion(rows, cols int64) (*fusion.Fusion, map[string]*fusion.TensorView) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, rows, cols)
	peak := f.Max(x, 1)
	shifted := f.Sub(x, f.Broadcast(peak, false, true))
	exps := f.Exp(shifted)
	sums := f.Sum(exps, 1)
	soft := f.Div(exps, f.Broadcast(sums, false, true))
	f.AddOutput(soft)
	return f, map[string]*fusion.TensorView{
		"x": x, "peak": peak, "shifted": shifted, "exps": exps, "sums": sums, "soft": soft,
	}
}

func TestPersistentBuffersSoftmax(t *testing.T) {
	f, tvs := softmaxFusion(1024, 4096)
	info := PersistentBuffers(f, nil)

	// x is read on both sides of the max, exps on both sides of the sum.
	require.Equal(t, []*fusion.TensorView{tvs["x"], tvs["exps"]}, info.PersistentBuffers)
	require.True(t, info.UnmappableDims.Has(tvs["x"].Root()[1]))
	require.True(t, info.UnmappableDims.Has(tvs["exps"].Root()[1]))
	require.False(t, info.UnmappableDims.Has(tvs["x"].Root()[0]))

	// Each buffer resolves where its direct path rejoins the reduction
	// path.
	require.Equal(t, []*fusion.TensorView{tvs["shifted"]}, info.ResolutionPoints[tvs["x"]])
	require.Equal(t, []*fusion.TensorView{tvs["soft"]}, info.ResolutionPoints[tvs["exps"]])

	// x is an input and exps sits downstream of the max: neither projects.
	require.Empty(t, info.ProjectablePersistentBuffers)
	require.Empty(t, info.ProjectableBufferInputs)
}

func TestPersistentBuffersMemoized(t *testing.T) {
	f, _ := softmaxFusion(8, 16)
	summary := NewHeuristicSummary(f)
	info := PersistentBuffers(f, summary)
	require.Same(t, info, PersistentBuffers(f, summary))

	// Recomputing without the summary yields the same picture.
	fresh := PersistentBuffers(f, nil)
	require.Equal(t, info.PersistentBuffers, fresh.PersistentBuffers)
	require.True(t, info.UnmappableDims.Equal(fresh.UnmappableDims))
}

func TestPersistentBufferSizeSoftmax(t *testing.T) {
	f, _ := softmaxFusion(1024, 4096)
	info := PersistentBuffers(f, nil)
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)

	// x and exps are live on disjoint stretches, so they do not add up.
	sizes, err := PersistentBufferSize(f, ri, info, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4096*4), sizes.PersistentBufferSize)
	require.Equal(t, int64(4096*4), sizes.ProjectedPersistentBufferSize)
	require.Less(t, sizes.PersistentBufferSize, RegisterFileSize)
	require.Equal(t, "persistent=16 KiB, projected=16 KiB", sizes.String())
}

func TestPersistentBuffersProjectable(t *testing.T) {
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

	info := PersistentBuffers(f, nil)
	require.Equal(t, []*fusion.TensorView{scaled, exps}, info.PersistentBuffers)

	// scaled is recomputable from x and w; exps depends on the max.
	require.Equal(t, []*fusion.TensorView{scaled}, info.ProjectablePersistentBuffers)
	require.Equal(t, []*fusion.TensorView{x, w}, info.ProjectableBufferInputs)
	require.True(t, info.UnmappableDimsProjectedToInputs.Has(x.Root()[1]))
	require.True(t, info.UnmappableDimsProjectedToInputs.Has(w.Root()[1]))
	require.False(t, info.UnmappableDimsProjectedToInputs.Has(x.Root()[0]))

	// Projecting scaled keeps both inputs live instead, which costs more
	// here.
	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)
	sizes, err := PersistentBufferSize(f, ri, info, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4096*4), sizes.PersistentBufferSize)
	require.Equal(t, int64(2*4096*4), sizes.ProjectedPersistentBufferSize)
}

func TestPersistentBuffersElementwise(t *testing.T) {
	f := fusion.New()
	x := f.Input("x", dtypes.Float32, 64)
	f.AddOutput(f.Exp(x))
	info := PersistentBuffers(f, nil)
	require.Empty(t, info.PersistentBuffers)

	ri := NewRuntimeInfo(f.NewEvaluator(), dtypes.Int32)
	sizes, err := PersistentBufferSize(f, ri, info, nil)
	require.NoError(t, err)
	require.Zero(t, sizes.PersistentBufferSize)
	require.Zero(t, sizes.ProjectedPersistentBufferSize)
}
