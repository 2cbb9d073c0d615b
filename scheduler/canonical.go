// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

// MergeReduction merges every reduction axis of tv into one, except those in
// dontMerge, and moves the result innermost. Returns how many axes were
// combined, 0 when tv has no mergeable reduction axis.
func MergeReduction(tv *fusion.TensorView, dontMerge sets.Set[*fusion.IterDomain]) int {
	prev := -1
	merged := 0
	for ii := tv.NDims() - 1; ii >= 0; ii-- {
		d := tv.Axis(ii)
		if !d.IsReduction() || dontMerge.Has(d) {
			continue
		}
		if prev == -1 {
			prev = ii
			continue
		}
		tv.Merge(ii, prev)
		prev = ii
		merged++
	}
	if prev == -1 {
		return 0
	}
	tv.Reorder(map[int]int{prev: -1})
	return merged + 1
}

// MergeNonReduction merges every non-reduction axis of tv into one, except
// those in dontMerge, and moves the result outermost. Returns how many axes
// were combined, 0 when tv has no mergeable non-reduction axis.
func MergeNonReduction(tv *fusion.TensorView, dontMerge sets.Set[*fusion.IterDomain]) int {
	prev := -1
	merged := 0
	for ii := tv.NDims() - 1; ii >= 0; ii-- {
		d := tv.Axis(ii)
		if d.IsReduction() || dontMerge.Has(d) {
			continue
		}
		if prev == -1 {
			prev = ii
			continue
		}
		tv.Merge(ii, prev)
		prev = ii
		merged++
	}
	if prev == -1 {
		return 0
	}
	tv.Reorder(map[int]int{prev: 0})
	return merged + 1
}

// merge3D coalesces tv's axes into runs of equal iteration kind, merging
// from the innermost outward and stacking the merged runs at the right.
// Returns the number of runs; a 3D-schedulable operand yields exactly 3.
func merge3D(tv *fusion.TensorView, dontMerge sets.Set[*fusion.IterDomain]) int {
	runs := 0
	guard := tv.NDims() // axes at positions >= guard are finished runs
	for {
		prev := -1
		var activeReduction bool
		for ii := guard - 1; ii >= 0; ii-- {
			d := tv.Axis(ii)
			if dontMerge.Has(d) {
				continue
			}
			if prev == -1 {
				prev = ii
				activeReduction = d.IsReduction()
				continue
			}
			if d.IsReduction() != activeReduction {
				break
			}
			tv.Merge(ii, prev)
			prev = ii
			guard--
		}
		if prev == -1 {
			return runs
		}
		tv.Reorder(map[int]int{prev: guard - 1})
		guard--
		runs++
	}
}

// CanonicalDimReduction reshapes tv into the canonical form the reduction
// schedulers expect. The default form is two axes, iteration outermost and
// reduction innermost; with schedule3D the axes are instead coalesced into
// the three runs of an iteration/reduction/iteration pattern, and the
// reshape panics if tv does not have exactly three runs. Trivial reduction
// axes never merge and keep their relative position. Reports whether tv has
// iteration and reduction axes left to schedule.
func CanonicalDimReduction(tv *fusion.TensorView, schedule3D bool) (hasIter, hasRed bool) {
	dontMerge := sets.Make[*fusion.IterDomain]()
	for _, d := range tv.Leaf() {
		if d.IsTrivialReduction() {
			dontMerge.Insert(d)
		}
	}
	if schedule3D {
		runs := merge3D(tv, dontMerge)
		if runs != 3 {
			exceptions.Panicf("scheduler.CanonicalDimReduction(%s): tried 3D merge, but got %d runs",
				tv.Name(), runs)
		}
		return true, true
	}
	hasRed = MergeReduction(tv, dontMerge) > 0
	hasIter = MergeNonReduction(tv, dontMerge) > 0
	return
}
