// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
)

// ComputeAtMode selects how aggressively inlining positions are resolved.
type ComputeAtMode int

//go:generate go tool enumer -type=ComputeAtMode -trimprefix=ComputeAt -output=gen_computeatmode_enumer.go computeat.go

const (
	// ComputeAtStandard inlines at the requested position and panics when no
	// loop can be shared at all.
	ComputeAtStandard ComputeAtMode = iota

	// ComputeAtBestEffort inlines as close to the requested position as the
	// schedules allow.
	ComputeAtBestEffort

	// ComputeAtMostInlined ignores the requested position and inlines as
	// deep as possible.
	ComputeAtMostInlined
)

// computeAt records that producer is computed inside consumer's loop nest at
// the given consumer position. The producer is replayed like the consumer
// first, unless it was already inlined elsewhere, in which case only the
// structural match of the existing schedules counts. The recorded position
// never decreases.
func computeAt(producer, consumer *fusion.TensorView, pos int, mode ComputeAtMode) {
	if mode == ComputeAtMostInlined {
		pos = -1
	}
	pos = normalizeLeafPos(consumer, pos, "computeAt")
	var matched int
	if producer.HasComputeAt() {
		matched = alreadyMatchedLeafPos(producer, consumer, pos)
	} else {
		matched = fusion.ReplayPasC(producer, consumer, pos)
	}
	if mode == ComputeAtStandard && pos > 0 && matched == 0 && producer.NDims() > 0 {
		exceptions.Panicf("computeAt: cannot inline %s into %s at position %d",
			producer.Name(), consumer.Name(), pos)
	}
	if matched > producer.ComputeAtPos() {
		producer.SetComputeAtPos(matched)
	}
}

// alreadyMatchedLeafPos counts the leading leaf axes of producer that
// structurally match consumer's, up to consumer position pos.
func alreadyMatchedLeafPos(producer, consumer *fusion.TensorView, pos int) int {
	perm := fusion.PermissiveRootClasses(producer.Fusion())
	pDesc := perm.LeafDescriptors(producer)
	cDesc := perm.LeafDescriptors(consumer)
	matched := 0
	for ii := 0; ii < pos && ii < producer.NDims(); ii++ {
		pd, okP := pDesc[producer.Axis(ii).ID()]
		cd, okC := cDesc[consumer.Axis(ii).ID()]
		if !okP || !okC || pd != cd {
			break
		}
		matched++
	}
	return matched
}

// ComputeAtInputs inlines every fusion input feeding consumer into
// consumer's loop nest at pos.
func ComputeAtInputs(consumer *fusion.TensorView, pos int, mode ComputeAtMode) {
	f := consumer.Fusion()
	for _, ancestor := range f.AncestorsOf(consumer) {
		if ancestor.IsFusionInput() {
			computeAt(ancestor, consumer, pos, mode)
		}
	}
}

// ComputeWithOutputs inlines producer into the loop nest of every fusion
// output it feeds, at pos.
func ComputeWithOutputs(producer *fusion.TensorView, pos int, mode ComputeAtMode) {
	f := producer.Fusion()
	for _, dependent := range f.DependentsOf(producer) {
		if dependent.IsFusionOutput() {
			computeAt(producer, dependent, pos, mode)
		}
	}
}

// ComputeAtBetween inlines each producer into each consumer it feeds, at
// pos. Consumer axes in trivialAxes cap the position: inlining never crosses
// an axis mapped to a trivial reduction.
func ComputeAtBetween(producers, consumers []*fusion.TensorView, pos int,
	mode ComputeAtMode, trivialAxes sets.Set[*fusion.IterDomain]) {
	if len(producers) == 0 || len(consumers) == 0 {
		return
	}
	f := producers[0].Fusion()
	for _, producer := range producers {
		between := make(map[*fusion.TensorView]bool)
		for _, tv := range f.TensorViewsBetween([]*fusion.TensorView{producer}, consumers) {
			between[tv] = true
		}
		for _, consumer := range consumers {
			if consumer == producer || !between[consumer] {
				continue
			}
			consumerPos := pos
			for ii, d := range consumer.Leaf() {
				if trivialAxes.Has(d) {
					consumerPos = min(normalizeLeafPos(consumer, pos, "ComputeAtBetween"), ii)
					break
				}
			}
			computeAt(producer, consumer, consumerPos, mode)
		}
	}
}
