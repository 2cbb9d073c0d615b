// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/pkg/errors"

	"github.com/gomlx/gofuser/fusion"
)

// TvProperties summarizes the reduction structure of one operand for the
// reduction heuristics, computed from its root domain.
type TvProperties struct {
	// TotalReductionNumel is the number of elements reduced per output
	// element, across all reduction axes.
	TotalReductionNumel int64

	// TotalIterationNumel is the number of output elements, i.e. how many
	// independent reductions the kernel performs.
	TotalIterationNumel int64

	// FastestDimReduction is set when the innermost non-broadcast,
	// non-trivial axis is a reduction. Operands with no such axes count as
	// fastest-dim reductions.
	FastestDimReduction bool

	// InnerMostDimensionNumel is the element count of the innermost run of
	// same-kind axes.
	InnerMostDimensionNumel int64

	// InnerMostDimensionNdims is how many root axes form that innermost run.
	InnerMostDimensionNdims int64

	// Dimensionality is the number of alternating reduction/iteration runs;
	// broadcast axes and trivial reductions do not break a run.
	Dimensionality int64
}

// GetProperties computes TvProperties for tv, resolving extents through
// runtimeInfo. It fails if an extent depends on an unbound input dimension.
func GetProperties(runtimeInfo *RuntimeInfo, tv *fusion.TensorView) (props TvProperties, err error) {
	root := tv.Root()
	props = TvProperties{
		TotalReductionNumel:     1,
		TotalIterationNumel:     1,
		FastestDimReduction:     true,
		InnerMostDimensionNumel: 1,
		Dimensionality:          1,
	}
	for ii := len(root) - 1; ii >= 0; ii-- {
		d := root[ii]
		if d.IsBroadcast() || d.IsTrivialReduction() {
			continue
		}
		props.FastestDimReduction = d.IsReduction()
		break
	}

	ev := runtimeInfo.Evaluator()
	for _, d := range root {
		var extent int64
		extent, err = ev.Evaluate(d.Extent())
		if err != nil {
			return props, errors.Wrapf(err, "GetProperties(%s)", tv.Name())
		}
		if d.IsReduction() {
			props.TotalReductionNumel *= extent
		} else {
			props.TotalIterationNumel *= extent
		}
	}

	// Count the alternating runs right to left; only the innermost run
	// contributes to InnerMostDimensionNumel.
	curIsReduction := props.FastestDimReduction
	for ii := len(root) - 1; ii >= 0; ii-- {
		d := root[ii]
		if d.IsBroadcast() || d.IsTrivialReduction() {
			continue
		}
		if d.IsReduction() != curIsReduction {
			props.Dimensionality++
			curIsReduction = !curIsReduction
			continue
		}
		if props.Dimensionality == 1 {
			var extent int64
			extent, err = ev.Evaluate(d.Extent())
			if err != nil {
				return props, errors.Wrapf(err, "GetProperties(%s)", tv.Name())
			}
			props.InnerMostDimensionNumel *= extent
			props.InnerMostDimensionNdims++
		}
	}
	return props, nil
}
