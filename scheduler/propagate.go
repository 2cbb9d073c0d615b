// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

// AllParallelTypesExcept returns every parallel type minus the excluded
// ones, for use as a ParallelizeAllLike filter.
func AllParallelTypesExcept(exclude ...fusion.ParallelType) sets.Set[fusion.ParallelType] {
	return sets.MakeWith(fusion.ParallelTypeValues()...).Sub(sets.MakeWith(exclude...))
}

// ParallelizeAllLike copies the parallelization of reference's first pos
// leaf axes onto the matching leaf axes of the selected operands. Matching
// is structural: axes derived from equivalent root axes by the same
// transforms. A negative pos counts from the end, with -1 covering the whole
// domain. An empty selected list selects every operand; fusion inputs are
// never parallelized. When selectedTypes is non-empty only those types are
// copied. With propagatePadding, warp padding travels along.
func ParallelizeAllLike(reference *fusion.TensorView, pos int, selected []*fusion.TensorView,
	selectedTypes sets.Set[fusion.ParallelType], propagatePadding bool) {
	f := reference.Fusion()
	pos = normalizeLeafPos(reference, pos, "ParallelizeAllLike")
	perm := fusion.PermissiveRootClasses(f)
	refDesc := perm.LeafDescriptors(reference)
	descToRef := make(map[string]*fusion.IterDomain)
	for ii := 0; ii < pos; ii++ {
		d := reference.Axis(ii)
		if desc, ok := refDesc[d.ID()]; ok {
			descToRef[desc] = d
		}
	}
	if len(selected) == 0 {
		selected = f.AllTensorViews()
	}
	for _, tv := range selected {
		if tv.IsFusionInput() {
			continue
		}
		tvDesc := perm.LeafDescriptors(tv)
		for ii := 0; ii < tv.NDims(); ii++ {
			d := tv.Axis(ii)
			desc, ok := tvDesc[d.ID()]
			if !ok {
				continue
			}
			refAxis, ok := descToRef[desc]
			if !ok {
				continue
			}
			if len(selectedTypes) == 0 || selectedTypes.Has(refAxis.ParallelType()) {
				d.Parallelize(refAxis.ParallelType())
			}
			if propagatePadding && refAxis.HasPaddingToWarp() {
				d.PadToMultipleOfWarp(refAxis.PaddedWarpMultiple())
			}
		}
	}
}

// TransformPropagateToAllFrom replays from's schedule up to pos on every
// operand of the fusion, spanning producer and consumer edges breadth-first.
// Each operand is replayed like its already-replayed neighbor, so the
// matched position carries through the traversal.
func TransformPropagateToAllFrom(from *fusion.TensorView, pos int) {
	pos = normalizeLeafPos(from, pos, "TransformPropagateToAllFrom")
	propagateSpanning(from, pos, nil)
}

// propagateSpanning replays every operand in included, or all of them when
// included is nil, like its nearest already-replayed neighbor.
func propagateSpanning(from *fusion.TensorView, pos int, included map[*fusion.TensorView]bool) {
	f := from.Fusion()
	position := map[*fusion.TensorView]int{from: pos}
	queue := []*fusion.TensorView{from}
	for len(queue) > 0 {
		tv := queue[0]
		queue = queue[1:]
		p := position[tv]
		for _, producer := range f.ProducersOf(tv) {
			if _, seen := position[producer]; seen || (included != nil && !included[producer]) {
				continue
			}
			position[producer] = fusion.ReplayPasC(producer, tv, p)
			queue = append(queue, producer)
		}
		for _, consumer := range f.ConsumersOf(tv) {
			if _, seen := position[consumer]; seen || (included != nil && !included[consumer]) {
				continue
			}
			position[consumer] = fusion.ReplayCasP(consumer, tv, p)
			queue = append(queue, consumer)
		}
	}
}

func normalizeLeafPos(tv *fusion.TensorView, pos int, context string) int {
	if pos < 0 {
		pos += tv.NDims() + 1
	}
	if pos < 0 || pos > tv.NDims() {
		exceptions.Panicf("%s(%s): position %d outside the valid range", context, tv.Name(), pos)
	}
	return pos
}

// PropagateOptions adjusts bounded schedule propagation. The zero value
// propagates transforms only and stops just short of the boundary operands.
type PropagateOptions struct {
	propagateParallelType  bool
	parallelPropagationPos int
	transformBoundary      bool
}

// PropagateParallelType also copies the parallelization of the source's
// first pos leaf axes once transforms are propagated. Vectorization never
// travels. Use pos -1 for the whole domain.
func (o PropagateOptions) PropagateParallelType(pos int) PropagateOptions {
	o.propagateParallelType = true
	o.parallelPropagationPos = pos
	return o
}

// PropagateToBoundary transforms the boundary operands too, instead of
// stopping at the operands just inside them.
func (o PropagateOptions) PropagateToBoundary() PropagateOptions {
	o.transformBoundary = true
	return o
}

// PropagateBackward replays from's schedule up to pos on the operands
// between the boundary to and from, moving towards producers only.
func PropagateBackward(from *fusion.TensorView, pos int, to []*fusion.TensorView, options PropagateOptions) {
	if len(to) == 0 {
		exceptions.Panicf("PropagateBackward(%s): propagation needs to be bounded, no boundary provided", from.Name())
	}
	f := from.Fusion()
	included := boundedSet(f.TensorViewsBetween(to, []*fusion.TensorView{from}), from, to, options)
	propagateBounded(from, pos, included, options)
}

// PropagateForward is PropagateBackward towards consumers.
func PropagateForward(from *fusion.TensorView, pos int, to []*fusion.TensorView, options PropagateOptions) {
	if len(to) == 0 {
		exceptions.Panicf("PropagateForward(%s): propagation needs to be bounded, no boundary provided", from.Name())
	}
	f := from.Fusion()
	included := boundedSet(f.TensorViewsBetween([]*fusion.TensorView{from}, to), from, to, options)
	propagateBounded(from, pos, included, options)
}

// PropagateBothWays propagates towards producers up to backwardTo and
// towards consumers up to forwardTo in one traversal.
func PropagateBothWays(from *fusion.TensorView, pos int, backwardTo, forwardTo []*fusion.TensorView, options PropagateOptions) {
	if len(backwardTo) == 0 || len(forwardTo) == 0 {
		exceptions.Panicf("PropagateBothWays(%s): propagation needs to be bounded in both directions", from.Name())
	}
	f := from.Fusion()
	included := boundedSet(f.TensorViewsBetween(backwardTo, []*fusion.TensorView{from}), from, backwardTo, options)
	for tv := range boundedSet(f.TensorViewsBetween([]*fusion.TensorView{from}, forwardTo), from, forwardTo, options) {
		included[tv] = true
	}
	propagateBounded(from, pos, included, options)
}

func boundedSet(between []*fusion.TensorView, from *fusion.TensorView,
	boundary []*fusion.TensorView, options PropagateOptions) map[*fusion.TensorView]bool {
	included := make(map[*fusion.TensorView]bool, len(between))
	for _, tv := range between {
		included[tv] = true
	}
	if !options.transformBoundary {
		for _, tv := range boundary {
			if tv != from {
				delete(included, tv)
			}
		}
	}
	included[from] = true
	return included
}

func propagateBounded(from *fusion.TensorView, pos int, included map[*fusion.TensorView]bool, options PropagateOptions) {
	pos = normalizeLeafPos(from, pos, "propagateBounded")
	propagateSpanning(from, pos, included)
	if !options.propagateParallelType {
		return
	}
	selected := make([]*fusion.TensorView, 0, len(included))
	for _, tv := range from.Fusion().AllTensorViews() {
		if included[tv] {
			selected = append(selected, tv)
		}
	}
	ParallelizeAllLike(from, options.parallelPropagationPos, selected,
		AllParallelTypesExcept(fusion.ParallelVectorize, fusion.ParallelMisalignedVectorize), false)
}
