// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

// ReductionTVs returns the operands defined by reduction expressions --
// ReductionOp or MmaOp -- in creation order, memoized in summary. With
// ignoreTrivial, operands whose reductions are all trivial are left out.
func ReductionTVs(f *fusion.Fusion, summary *HeuristicSummary, ignoreTrivial bool) []*fusion.TensorView {
	all := summaryEntry(summary, f, entryReductionTVs, func() []*fusion.TensorView {
		var result []*fusion.TensorView
		for _, e := range f.Exprs() {
			switch e.(type) {
			case *fusion.ReductionOp, *fusion.MmaOp:
				result = append(result, e.Outputs()...)
			}
		}
		return result
	})
	if !ignoreTrivial {
		return all
	}
	result := make([]*fusion.TensorView, 0, len(all))
	for _, tv := range all {
		if hasNonTrivialReduction(tv) {
			result = append(result, tv)
		}
	}
	return result
}

func hasNonTrivialReduction(tv *fusion.TensorView) bool {
	for _, d := range tv.MaybeRFactor() {
		if d.IsReduction() && !d.IsTrivialReduction() {
			return true
		}
	}
	return false
}

// ViewTVs returns the operands defined by view expressions, in creation
// order. Schedulers use them to know which transforms are frozen and must
// propagate everywhere.
func ViewTVs(f *fusion.Fusion) []*fusion.TensorView {
	var result []*fusion.TensorView
	for _, e := range f.Exprs() {
		if _, isView := e.(*fusion.ViewOp); isView {
			result = append(result, e.Outputs()...)
		}
	}
	return result
}

// TrivialReductionAxes collects the trivial reduction axes of every operand
// of f. Schedulers exclude them from merging and inlining decisions; they
// cost nothing to execute.
func TrivialReductionAxes(f *fusion.Fusion) sets.Set[*fusion.IterDomain] {
	result := sets.Make[*fusion.IterDomain]()
	for _, tv := range f.AllTensorViews() {
		for _, d := range tv.MaybeRFactor() {
			if d.IsTrivialReduction() {
				result.Insert(d)
			}
		}
	}
	return result
}
