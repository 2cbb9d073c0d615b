// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"github.com/gomlx/exceptions"
)

// ReplayPasC reschedules producer to follow consumer's loop structure up to
// position pos of consumer's leaf. Negative positions count from one past
// the end, so -1 replays the full leaf. Axes of consumer with no counterpart
// on producer -- and transforms touching them -- are skipped best-effort.
// Returns how many leading leaf axes of producer ended up matched.
func ReplayPasC(producer, consumer *TensorView, pos int) int {
	refPos := normalizeReplayPos(consumer, pos, "fusion.ReplayPasC")
	corr := make(map[int]*IterDomain)
	for c, p := range MapConsumerToProducer(consumer, producer) {
		corr[c.id] = p
	}
	return replayTransforms(consumer, refPos, producer, corr)
}

// ReplayCasP reschedules consumer to follow producer's loop structure up to
// position pos of producer's leaf. Negative positions count from one past
// the end, so -1 replays the full leaf. Producer reduction axes have no
// counterpart on consumer and are skipped best-effort. Returns how many
// leading leaf axes of consumer ended up matched.
func ReplayCasP(consumer, producer *TensorView, pos int) int {
	refPos := normalizeReplayPos(producer, pos, "fusion.ReplayCasP")
	corr := make(map[int]*IterDomain)
	for p, c := range MapProducerToConsumer(producer, consumer) {
		corr[p.id] = c
	}
	return replayTransforms(producer, refPos, consumer, corr)
}

// SelfReplay reschedules target, whose root mirrors source's reduction-free
// MaybeRFactor positionally, to follow source's full schedule. Used by the
// caching ops to keep both sides of an inserted copy aligned.
func SelfReplay(target, source *TensorView) {
	srcAxes := NoReductions(source.MaybeRFactor())
	tgtAxes := target.MaybeRFactor()
	if len(srcAxes) != len(tgtAxes) {
		exceptions.Panicf("fusion.SelfReplay: %s and %s do not align (%d vs %d axes)",
			source.Name(), target.Name(), len(srcAxes), len(tgtAxes))
	}
	corr := make(map[int]*IterDomain, len(srcAxes))
	for ii := range srcAxes {
		corr[srcAxes[ii].id] = tgtAxes[ii]
	}
	replayTransforms(source, len(source.leaf), target, corr)
}

func normalizeReplayPos(ref *TensorView, pos int, context string) int {
	n := len(ref.leaf)
	p := pos
	if p < 0 {
		p += n + 1
	}
	if p < 0 || p > n {
		exceptions.Panicf("%s: position %d out of range for %s with %d axes", context, pos, ref.Name(), n)
	}
	return p
}

// replayTransforms rebuilds target's schedule to mirror reference's leaf up
// to refPos. corr maps reference axis ids to target axes and is extended as
// records are replayed. Records whose operands have no target counterpart
// are skipped. Returns the number of leading target leaf axes matched to
// reference axes.
func replayTransforms(reference *TensorView, refPos int, target *TensorView, corr map[int]*IterDomain) int {
	if target.HasComputeAt() {
		exceptions.Panicf("fusion: cannot replay %s, it is already inlined into a consumer", target.Name())
	}

	// Drop target's current schedule, back to its frozen domain.
	target.leaf = append([]*IterDomain{}, target.MaybeRFactor()...)
	target.history = target.history[:target.rfactorRecords]

	// Select the records deriving reference's first refPos leaf axes.
	needed := make(map[int]bool, refPos)
	for ii := 0; ii < refPos; ii++ {
		needed[reference.leaf[ii].id] = true
	}
	records := reference.history[reference.rfactorRecords:]
	neededRecord := make([]bool, len(records))
	for ii := len(records) - 1; ii >= 0; ii-- {
		rec := records[ii]
		switch rec.Kind {
		case TransformSplit:
			if needed[rec.Outer] || needed[rec.Inner] {
				neededRecord[ii] = true
				needed[rec.In] = true
			}
		case TransformMerge:
			if needed[rec.Out] {
				neededRecord[ii] = true
				needed[rec.Outer] = true
				needed[rec.Inner] = true
			}
		}
	}

	for ii, rec := range records {
		if !neededRecord[ii] {
			continue
		}
		switch rec.Kind {
		case TransformSplit:
			tgtIn := corr[rec.In]
			if tgtIn == nil {
				continue
			}
			pos := leafPos(target, tgtIn)
			if pos < 0 {
				continue
			}
			target.splitAt(pos, rec.Factor)
			corr[rec.Outer] = target.leaf[pos]
			corr[rec.Inner] = target.leaf[pos+1]
		case TransformMerge:
			tgtOuter, tgtInner := corr[rec.Outer], corr[rec.Inner]
			if tgtOuter == nil || tgtInner == nil {
				continue
			}
			po, pi := leafPos(target, tgtOuter), leafPos(target, tgtInner)
			if po < 0 || pi < 0 {
				continue
			}
			target.mergeAt(po, pi)
			lo := po
			if pi < lo {
				lo = pi
			}
			corr[rec.Out] = target.leaf[lo]
		}
	}

	// Order target's leaf: matched axes first, following reference's order,
	// then the unmatched ones in their prior relative order.
	matched := make([]*IterDomain, 0, refPos)
	inMatched := make(map[*IterDomain]bool, refPos)
	for ii := 0; ii < refPos; ii++ {
		tgt := corr[reference.leaf[ii].id]
		if tgt == nil || leafPos(target, tgt) < 0 || inMatched[tgt] {
			continue
		}
		matched = append(matched, tgt)
		inMatched[tgt] = true
	}
	newLeaf := make([]*IterDomain, 0, len(target.leaf))
	newLeaf = append(newLeaf, matched...)
	for _, d := range target.leaf {
		if !inMatched[d] {
			newLeaf = append(newLeaf, d)
		}
	}
	target.leaf = newLeaf
	return len(matched)
}

func leafPos(tv *TensorView, d *IterDomain) int {
	for ii, leaf := range tv.leaf {
		if leaf == d {
			return ii
		}
	}
	return -1
}
