// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
	"github.com/gomlx/gofuser/internal/xslices"
)

// PersistentBufferInfo describes the operands a normalization-style fusion
// must keep live across a reduction. A producer is a persistent buffer when
// one of its axes cannot be inlined into a consumer's loops: the consumer
// also depends on a reduction over that axis, so the reduction must finish
// before the consumer's loop body can run.
type PersistentBufferInfo struct {
	// PersistentBuffers are the producers that must stay live, in creation
	// order.
	PersistentBuffers []*fusion.TensorView

	// UnmappableDims are the producer axes that force persistence.
	UnmappableDims sets.Set[*fusion.IterDomain]

	// ResolutionPoints lists, per persistent buffer, the operands where the
	// buffer's direct path meets the reduction-broadcast path again. The
	// buffer is needed until its last resolution point.
	ResolutionPoints map[*fusion.TensorView][]*fusion.TensorView

	// ProjectablePersistentBuffers are the buffers that can be recomputed
	// from fusion inputs instead of being kept live, because no reduction
	// separates them from the inputs.
	ProjectablePersistentBuffers []*fusion.TensorView

	// ProjectableBufferInputs are the fusion inputs feeding the projectable
	// buffers: what would be kept live in their place.
	ProjectableBufferInputs []*fusion.TensorView

	// UnmappableDimsProjectedToInputs are the input axes exactly mapped to
	// an unmappable buffer axis.
	UnmappableDimsProjectedToInputs sets.Set[*fusion.IterDomain]
}

// PersistentBuffers finds the persistent buffers of f and how they resolve,
// memoized in summary. The result only depends on the fusion's structure,
// not on extents.
func PersistentBuffers(f *fusion.Fusion, summary *HeuristicSummary) *PersistentBufferInfo {
	return summaryEntry(summary, f, entryPersistentBuffers, func() *PersistentBufferInfo {
		return findPersistentBuffers(f)
	})
}

func findPersistentBuffers(f *fusion.Fusion) *PersistentBufferInfo {
	info := &PersistentBufferInfo{
		UnmappableDims:                  sets.Make[*fusion.IterDomain](),
		ResolutionPoints:                make(map[*fusion.TensorView][]*fusion.TensorView),
		UnmappableDimsProjectedToInputs: sets.Make[*fusion.IterDomain](),
	}
	perm := fusion.PermissiveRootClasses(f)
	reductionTvs := ReductionTVs(f, nil, true)

	for _, producer := range f.AllTensorViews() {
		consumers := f.ConsumersOf(producer)
		if len(consumers) == 0 {
			continue
		}
		mappable := true
		for _, consumer := range consumers {
			for _, pID := range producer.MaybeRFactor() {
				if pID.IsReduction() || pID.IsBroadcast() {
					continue
				}
				if axisMeetsReductionBefore(f, perm, reductionTvs, producer, consumer, pID) {
					mappable = false
					info.UnmappableDims.Insert(pID)
				}
			}
		}
		if !mappable {
			info.PersistentBuffers = append(info.PersistentBuffers, producer)
		}
	}

	for _, buffer := range info.PersistentBuffers {
		info.ResolutionPoints[buffer] = bufferResolutionPoints(f, buffer)
	}

	// A buffer is projectable to the inputs when recomputing it does not
	// redo a reduction.
	for _, buffer := range info.PersistentBuffers {
		if buffer.IsFusionInput() || buffer.HasReduction() {
			continue
		}
		reductionUpstream := false
		for _, ancestor := range f.AncestorsOf(buffer) {
			if ancestor.HasReduction() {
				reductionUpstream = true
				break
			}
		}
		if !reductionUpstream {
			info.ProjectablePersistentBuffers = append(info.ProjectablePersistentBuffers, buffer)
		}
	}

	inputSet := sets.Make[*fusion.TensorView]()
	for _, buffer := range info.ProjectablePersistentBuffers {
		for _, ancestor := range f.AncestorsOf(buffer) {
			if ancestor.IsFusionInput() {
				inputSet.Insert(ancestor)
			}
		}
	}
	for _, in := range f.Inputs() {
		if inputSet.Has(in) {
			info.ProjectableBufferInputs = append(info.ProjectableBufferInputs, in)
		}
	}

	exact := fusion.ExactRootClasses(f)
	for _, in := range info.ProjectableBufferInputs {
		for _, inID := range in.MaybeRFactor() {
			for unmappable := range info.UnmappableDims {
				if exact.AreMapped(inID, unmappable) {
					info.UnmappableDimsProjectedToInputs.Insert(inID)
					break
				}
			}
		}
	}
	if klog.V(2).Enabled() {
		names := make([]string, 0, len(info.PersistentBuffers))
		for _, buffer := range info.PersistentBuffers {
			names = append(names, buffer.Name())
		}
		klog.Infof("Persistent buffers of fusion %s: %v (%d projectable to inputs)",
			f.ID(), names, len(info.ProjectablePersistentBuffers))
	}
	return info
}

// axisMeetsReductionBefore reports whether pID of producer is reduced on the
// way to consumer: a reduction output strictly between the two carries a
// reduction axis in pID's class. Inlining producer along pID into consumer's
// loops would then need the reduction finished per element, so the axis is
// unmappable.
func axisMeetsReductionBefore(f *fusion.Fusion, perm *fusion.RootClasses,
	reductionTvs []*fusion.TensorView, producer, consumer *fusion.TensorView, pID *fusion.IterDomain) bool {
	between := f.TensorViewsBetween([]*fusion.TensorView{producer}, []*fusion.TensorView{consumer})
	for _, tv := range between {
		if tv == producer || tv == consumer {
			continue
		}
		isReductionTv := false
		for _, red := range reductionTvs {
			if red == tv {
				isReductionTv = true
				break
			}
		}
		if !isReductionTv {
			continue
		}
		for _, r := range tv.MaybeRFactor() {
			if !r.IsReduction() || r.IsTrivialReduction() {
				continue
			}
			if perm.AreMapped(pID, r) {
				return true
			}
		}
	}
	return false
}

// bufferResolutionPoints finds where buffer's reduction-free path and the
// reduction path meet again: the operands depending on a reduction of the
// buffer that also directly consume a value computed from the buffer without
// any reduction.
func bufferResolutionPoints(f *fusion.Fusion, buffer *fusion.TensorView) []*fusion.TensorView {
	// Closure of values computable from the buffer without reducing.
	byp := map[*fusion.TensorView]bool{buffer: true}
	queue := []*fusion.TensorView{buffer}
	for len(queue) > 0 {
		tv := queue[0]
		queue = queue[1:]
		for _, e := range f.UsesOf(tv) {
			switch e.(type) {
			case *fusion.ReductionOp, *fusion.MmaOp:
				continue
			}
			for _, out := range e.Outputs() {
				if !byp[out] {
					byp[out] = true
					queue = append(queue, out)
				}
			}
		}
	}

	var reductionOutputs []*fusion.TensorView
	for _, e := range f.Exprs() {
		switch e.(type) {
		case *fusion.ReductionOp, *fusion.MmaOp:
		default:
			continue
		}
		for _, in := range e.Inputs() {
			if byp[in] {
				reductionOutputs = append(reductionOutputs, e.Outputs()...)
				break
			}
		}
	}
	if len(reductionOutputs) == 0 {
		return nil
	}
	afterReduction := make(map[*fusion.TensorView]bool)
	for _, tv := range f.DependentsOf(reductionOutputs...) {
		afterReduction[tv] = true
	}

	var points []*fusion.TensorView
	for _, tv := range f.AllTensorViews() {
		if !afterReduction[tv] {
			continue
		}
		for _, producer := range f.ProducersOf(tv) {
			if byp[producer] && !afterReduction[producer] {
				points = append(points, tv)
				break
			}
		}
	}
	return points
}

// PersistentBufferSizeReturn carries the register-pressure estimates of a
// persistent schedule: as-is, and with projectable buffers replaced by the
// inputs they would be recomputed from.
type PersistentBufferSizeReturn struct {
	PersistentBufferSize          int64
	ProjectedPersistentBufferSize int64
}

// String implements fmt.Stringer.
func (r PersistentBufferSizeReturn) String() string {
	return fmt.Sprintf("persistent=%s, projected=%s",
		humanize.IBytes(uint64(r.PersistentBufferSize)),
		humanize.IBytes(uint64(r.ProjectedPersistentBufferSize)))
}

// PersistentBufferSize computes how many bytes of registers a persistent
// schedule of f needs, based on the buffers that must be persistent and
// their minimum live dimensions. Buffers live at the same point in the
// fusion add up; the result is the maximum over all points. The scoped
// liveness rows are memoized in summary.
func PersistentBufferSize(f *fusion.Fusion, runtimeInfo *RuntimeInfo,
	info *PersistentBufferInfo, summary *HeuristicSummary) (PersistentBufferSizeReturn, error) {
	var ret PersistentBufferSizeReturn
	if len(info.PersistentBuffers) == 0 {
		return ret, nil
	}
	allBuffers := make([]*fusion.TensorView, 0, len(info.PersistentBuffers)+len(info.ProjectableBufferInputs))
	allBuffers = append(allBuffers, info.PersistentBuffers...)
	allBuffers = append(allBuffers, info.ProjectableBufferInputs...)
	nBuffers := len(info.PersistentBuffers)

	ev := runtimeInfo.Evaluator()
	sizes := make([]int64, len(allBuffers))
	for bi, buffer := range allBuffers {
		size := int64(-1)
		for _, d := range buffer.MaybeRFactor() {
			if d.IsReduction() || d.IsBroadcast() {
				continue
			}
			// Only the dimensions that must stay persistent count.
			if bi < nBuffers && !info.UnmappableDims.Has(d) {
				continue
			}
			if bi >= nBuffers && !info.UnmappableDimsProjectedToInputs.Has(d) {
				continue
			}
			extent, err := ev.Evaluate(d.Extent())
			if err != nil {
				return ret, errors.Wrapf(err, "PersistentBufferSize(%s)", buffer.Name())
			}
			if size == -1 {
				size = extent
			} else {
				size *= extent
			}
		}
		if size == -1 {
			size = 0
		} else {
			size *= runtimeInfo.DataTypeSize(buffer.DType())
		}
		sizes[bi] = size
	}

	persistentMask := make([]bool, len(allBuffers))
	for bi := 0; bi < nBuffers; bi++ {
		persistentMask[bi] = true
	}
	projectedMask := xslices.SliceWithValue(len(allBuffers), true)
	for bi := 0; bi < nBuffers; bi++ {
		for _, projectable := range info.ProjectablePersistentBuffers {
			if allBuffers[bi] == projectable {
				projectedMask[bi] = false
			}
		}
	}

	factors := summaryEntry(summary, f, entryScopePersistentFactors, func() map[*fusion.TensorView][]bool {
		return scopedPersistenceFactors(f, info, allBuffers, nBuffers)
	})

	maskedDot := func(active, row []bool) int64 {
		var total int64
		for bi := range row {
			if active[bi] && row[bi] {
				total += sizes[bi]
			}
		}
		return total
	}
	for _, row := range factors {
		ret.PersistentBufferSize = max(ret.PersistentBufferSize, maskedDot(persistentMask, row))
		ret.ProjectedPersistentBufferSize = max(ret.ProjectedPersistentBufferSize, maskedDot(projectedMask, row))
	}
	return ret, nil
}

// scopedPersistenceFactors marks, for every operand of the fusion, which
// buffers are live there: a buffer is live on the operands between it and
// its resolution points. Projectable inputs are live from their read to the
// resolution points of every projectable buffer they feed.
func scopedPersistenceFactors(f *fusion.Fusion, info *PersistentBufferInfo,
	allBuffers []*fusion.TensorView, nBuffers int) map[*fusion.TensorView][]bool {
	result := make(map[*fusion.TensorView][]bool)
	mark := func(tv *fusion.TensorView, bi int) {
		row := result[tv]
		if row == nil {
			row = make([]bool, len(allBuffers))
			result[tv] = row
		}
		row[bi] = true
	}
	for bi := 0; bi < nBuffers; bi++ {
		buffer := allBuffers[bi]
		for _, tv := range f.TensorViewsBetween([]*fusion.TensorView{buffer}, info.ResolutionPoints[buffer]) {
			mark(tv, bi)
		}
	}
	for bi := nBuffers; bi < len(allBuffers); bi++ {
		input := allBuffers[bi]
		for _, buffer := range info.ProjectablePersistentBuffers {
			feeds := false
			for _, ancestor := range f.AncestorsOf(buffer) {
				if ancestor == input {
					feeds = true
					break
				}
			}
			if !feeds {
				continue
			}
			for _, tv := range f.TensorViewsBetween([]*fusion.TensorView{input}, info.ResolutionPoints[buffer]) {
				mark(tv, bi)
			}
		}
	}
	return result
}
