// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestReplayPasC(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 16, 8)
	y := f.Exp(x)
	f.AddOutput(y)

	y.Split(0, 4).Merge(-2, -1)
	require.Equal(t, 2, y.NDims())

	matched := ReplayPasC(x, y, -1)
	require.Equal(t, 2, matched)
	require.Equal(t, 2, x.NDims())
	require.Equal(t, int64(4), x.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(32), x.Axis(1).Extent().ConstValue())

	// Replaying resets any earlier schedule of the target.
	matched = ReplayPasC(x, y, 0)
	require.Equal(t, 0, matched)
	require.Equal(t, 2, x.NDims())
	require.Equal(t, int64(16), x.Axis(0).Extent().ConstValue())

	// Partial replay only mirrors the leading axes.
	matched = ReplayPasC(x, y, 1)
	require.Equal(t, 1, matched)
	require.Equal(t, int64(4), x.Axis(0).Extent().ConstValue())

	require.Panics(t, func() { ReplayPasC(x, y, 5) })
}

func TestReplayCasP(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 12, 8)
	r := f.Sum(x, 1)
	z := f.Neg(r)
	f.AddOutput(z)

	r.Split(0, 4)
	require.Equal(t, 3, r.NDims())

	matched := ReplayCasP(z, r, -1)
	require.Equal(t, 2, matched)
	require.Equal(t, 2, z.NDims())
	require.Equal(t, int64(3), z.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(4), z.Axis(1).Extent().ConstValue())
}

func TestReplayCasPSkipsReductions(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 12, 8)
	r := f.Sum(x, 1)
	z := f.Neg(r)
	f.AddOutput(z)

	// Transforms on the reduction axis have no counterpart on the consumer.
	r.Split(1, 2)
	matched := ReplayCasP(z, r, -1)
	require.Equal(t, 1, matched)
	require.Equal(t, 1, z.NDims())
	require.Equal(t, int64(12), z.Axis(0).Extent().ConstValue())
}

func TestReplayInlinedTargetPanics(t *testing.T) {
	f := New()
	x := f.Input("x", dtypes.Float32, 16)
	y := f.Exp(x)
	f.AddOutput(y)
	x.SetComputeAtPos(1)
	require.Panics(t, func() { ReplayPasC(x, y, -1) })
}

func TestSelfReplay(t *testing.T) {
	f := New()
	u := f.Input("u", dtypes.Float32, 4, 8)
	v := f.Exp(u)
	w := f.Exp(u)
	f.AddOutput(v)
	f.AddOutput(w)

	v.Split(0, 2).Split(2, 4)
	SelfReplay(w, v)
	require.Equal(t, 4, w.NDims())
	require.Equal(t, int64(2), w.Axis(0).Extent().ConstValue())
	require.Equal(t, int64(2), w.Axis(1).Extent().ConstValue())
	require.Equal(t, int64(2), w.Axis(2).Extent().ConstValue())
	require.Equal(t, int64(4), w.Axis(3).Extent().ConstValue())

	s := f.Input("s", dtypes.Float32, 4)
	require.Panics(t, func() { SelfReplay(s, v) })
}
