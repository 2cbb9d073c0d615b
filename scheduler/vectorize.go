// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/gofuser/fusion"
	"github.com/gomlx/gofuser/internal/sets"
	"github.com/gomlx/gofuser/internal/xslices"
)

// InnerMostRootDim returns the fastest varying root axis of tv, the one a
// vectorized access would run along. Broadcast axes and trivial reductions
// only count when nothing faster exists. Returns nil for a zero-dim operand.
func InnerMostRootDim(tv *fusion.TensorView) *fusion.IterDomain {
	if tv.NDims() == 0 {
		return nil
	}
	// The root domain is the producer-like side of an rfactor'ed reduction.
	domain := tv.MaybeRFactor()
	if tv.HasReduction() && tv.HasRFactor() {
		domain = tv.Root()
	}
	var innerMost *fusion.IterDomain
	for ii := len(domain) - 1; ii >= 0; ii-- {
		d := domain[ii]
		if d.IsBroadcast() || d.IsTrivialReduction() {
			if innerMost == nil {
				innerMost = d
			}
			continue
		}
		innerMost = d
		break
	}
	return innerMost
}

// FindAllMappedDims collects startDim and every root axis of the fusion it
// maps to, walking producer and consumer edges from from. On the vectorize
// pass the walk projects through view transforms to the innermost
// contributing axis; otherwise views are only crossed by axes they keep
// intact.
func FindAllMappedDims(from *fusion.TensorView, startDim *fusion.IterDomain, vectorizePass bool) sets.Set[*fusion.IterDomain] {
	f := from.Fusion()
	mapped := map[*fusion.TensorView]*fusion.IterDomain{from: startDim}
	queue := []*fusion.TensorView{from}
	for len(queue) > 0 {
		tv := queue[0]
		queue = queue[1:]
		d := mapped[tv]
		if rootD := viewAxisOnRootSide(tv, d, vectorizePass); rootD != nil {
			for _, producer := range f.ProducersOf(tv) {
				if _, ok := mapped[producer]; ok {
					continue
				}
				c2p := fusion.MapConsumerToProducer(tv, producer)
				if pd, ok := c2p[rootD]; ok {
					mapped[producer] = pd
					queue = append(queue, producer)
				}
			}
		}
		if rfD := viewAxisOnRFactorSide(tv, d, vectorizePass); rfD != nil {
			for _, consumer := range f.ConsumersOf(tv) {
				if _, ok := mapped[consumer]; ok {
					continue
				}
				p2c := fusion.MapProducerToConsumer(tv, consumer)
				if cd, ok := p2c[rfD]; ok {
					mapped[consumer] = cd
					queue = append(queue, consumer)
				}
			}
		}
	}
	result := sets.Make[*fusion.IterDomain]()
	for _, d := range mapped {
		result.Insert(d)
	}
	return result
}

// viewAxisOnRootSide returns d expressed in tv's root domain, where pairwise
// maps towards producers are keyed. Axes a view keeps intact live on both
// sides; others project only on the vectorize pass.
func viewAxisOnRootSide(tv *fusion.TensorView, d *fusion.IterDomain, vectorizePass bool) *fusion.IterDomain {
	if !tv.HasRFactor() || axisInDomain(d, tv.Root()) {
		return d
	}
	if !axisInDomain(d, tv.MaybeRFactor()) {
		return nil
	}
	if vectorizePass {
		return fusion.ProjectViewToRoot(tv, d)
	}
	return nil
}

// viewAxisOnRFactorSide is the consumer-facing counterpart of
// viewAxisOnRootSide.
func viewAxisOnRFactorSide(tv *fusion.TensorView, d *fusion.IterDomain, vectorizePass bool) *fusion.IterDomain {
	if !tv.HasRFactor() || axisInDomain(d, tv.MaybeRFactor()) {
		return d
	}
	if !axisInDomain(d, tv.Root()) {
		return nil
	}
	if vectorizePass {
		return fusion.ProjectViewToRFactor(tv, d)
	}
	return nil
}

func axisInDomain(d *fusion.IterDomain, domain []*fusion.IterDomain) bool {
	for _, other := range domain {
		if other == d {
			return true
		}
	}
	return false
}

// HasInnerDim reports whether tv's own innermost root axis belongs to
// vectorDims. With shouldVectorize the axis must also be marked contiguous,
// so a vectorized load or store of tv is actually legal.
func HasInnerDim(tv *fusion.TensorView, vectorDims sets.Set[*fusion.IterDomain], shouldVectorize bool) bool {
	innerMost := InnerMostRootDim(tv)
	if innerMost == nil || innerMost.IsReduction() {
		return false
	}
	if !vectorDims.Has(innerMost) {
		return false
	}
	if !shouldVectorize {
		return true
	}
	for ii, d := range tv.MaybeRFactor() {
		if d == innerMost {
			return tv.Contiguity()[ii]
		}
	}
	return false
}

// GetInputsOutputsWithInnerDim returns the fusion inputs and outputs that
// share reference's innermost dimension, the candidates for vectorized or
// unrolled access. With innerOnly the shared axis must be the candidate's
// own innermost one; otherwise any mapped axis qualifies. vectorize requires
// innerOnly and additionally demands contiguity. Memoized in summary for the
// two combinations the heuristics use.
func GetInputsOutputsWithInnerDim(reference *fusion.TensorView, innerOnly, vectorize bool, summary *HeuristicSummary) []*fusion.TensorView {
	if vectorize && !innerOnly {
		exceptions.Panicf("GetInputsOutputsWithInnerDim(%s): can only vectorize inner-most dimensions", reference.Name())
	}
	f := reference.Fusion()
	compute := func() []*fusion.TensorView {
		innerMost := InnerMostRootDim(reference)
		if innerMost == nil {
			return nil
		}
		mappedDims := FindAllMappedDims(reference, innerMost, vectorize)
		var result []*fusion.TensorView
		add := func(tv *fusion.TensorView) {
			if innerOnly {
				if HasInnerDim(tv, mappedDims, vectorize) {
					result = append(result, tv)
				}
				return
			}
			for _, d := range tv.MaybeRFactor() {
				if !d.IsReduction() && mappedDims.Has(d) {
					result = append(result, tv)
					return
				}
			}
		}
		for _, in := range f.Inputs() {
			add(in)
		}
		for _, out := range f.Outputs() {
			add(out)
		}
		return result
	}
	switch {
	case innerOnly && vectorize:
		return summaryEntry(summary, f, entryVectorizableInputsOutputs, compute)
	case !innerOnly && !vectorize:
		return summaryEntry(summary, f, entryUnrollableInputsOutputs, compute)
	}
	return compute()
}

// BroadcastMultiple totals, for one position of the reference domain, the
// bytes the fusion inputs and outputs move per element when the iteration
// space is split there: LhsMultiple counts tensors with a concrete axis at
// or before the position, RhsMultiple those with one at or after it.
type BroadcastMultiple struct {
	LhsMultiple int64
	RhsMultiple int64
}

// GetBroadcastMultiples weighs every break point of reference's domain by
// the bytes accessed on each side, one BroadcastMultiple per axis. A tensor
// counts towards a side once one of its concrete root axes maps there; axes
// that only exist as broadcasts never count. Used to pick where to split a
// fusion with mid-broadcasts into an outer and an inner section. Memoized in
// summary.
func GetBroadcastMultiples(reference *fusion.TensorView, indexType dtypes.DType, summary *HeuristicSummary) []BroadcastMultiple {
	f := reference.Fusion()
	return summaryEntry(summary, f, entryBroadcastMultiples, func() []BroadcastMultiple {
		perm := fusion.PermissiveRootClasses(f)
		refDomain := reference.MaybeRFactor()
		multiples := make([]BroadcastMultiple, len(refDomain))
		inOut := make([]*fusion.TensorView, 0, len(f.Inputs())+len(f.Outputs()))
		inOut = append(inOut, f.Inputs()...)
		inOut = append(inOut, f.Outputs()...)
		for _, tv := range inOut {
			mappedAxes := make([]bool, len(refDomain))
			working := xslices.Copy(tv.Root())
			for refI, refID := range refDomain {
				if refID.IsBroadcast() || refID.IsReduction() {
					continue
				}
				match := -1
				for jj, d := range working {
					if d != nil && perm.AreMapped(d, refID) {
						match = jj
						break
					}
				}
				if match < 0 {
					continue
				}
				claimed := working[match]
				working[match] = nil
				if claimed.IsBroadcast() || claimed.IsReduction() {
					continue
				}
				mappedAxes[refI] = true
			}

			dtypeSize := dataTypeSize(tv.DType(), indexType)
			lhs, rhs := false, false
			n := len(mappedAxes)
			for ii := 0; ii < n; ii++ {
				lhsI, rhsI := ii, n-1-ii
				if lhs {
					multiples[lhsI].LhsMultiple += dtypeSize
				} else if mappedAxes[lhsI] {
					multiples[lhsI].LhsMultiple += dtypeSize
					lhs = true
				}
				if rhs || mappedAxes[rhsI] {
					multiples[rhsI].RhsMultiple += dtypeSize
					rhs = true
				}
			}
		}
		return multiples
	})
}

// CollectMaxVectorizeSizeWithContigMerge returns the widest power-of-two
// vector width, in elements, usable on tv's innermost dimension within
// maxVectorSizeBytes. When tv is contiguous across all concrete axes the
// width may span the whole merged extent, otherwise only the innermost
// axis. tv must still be unscheduled.
func CollectMaxVectorizeSizeWithContigMerge(tv *fusion.TensorView, maxVectorSizeBytes int64, runtimeInfo *RuntimeInfo) (int64, error) {
	if tv.HasComputeAt() {
		exceptions.Panicf("CollectMaxVectorizeSizeWithContigMerge(%s): operand is already inlined", tv.Name())
	}
	itemSize := runtimeInfo.DataTypeSize(tv.DType())
	if maxVectorSizeBytes < itemSize {
		exceptions.Panicf("CollectMaxVectorizeSizeWithContigMerge(%s): budget of %d bytes is below the element size of %d bytes",
			tv.Name(), maxVectorSizeBytes, itemSize)
	}

	domain := tv.MaybeRFactor()
	contiguity := tv.Contiguity()
	fullyContiguous := true
	for ii, d := range domain {
		if d.IsBroadcast() || d.IsReduction() {
			continue
		}
		if !contiguity[ii] {
			fullyContiguous = false
			break
		}
	}

	ev := runtimeInfo.Evaluator()
	mergedSize := int64(1)
	if fullyContiguous {
		for _, d := range domain {
			if d.IsBroadcast() || d.IsReduction() {
				continue
			}
			extent, err := ev.Evaluate(d.Extent())
			if err != nil {
				return 0, errors.Wrapf(err, "CollectMaxVectorizeSizeWithContigMerge(%s)", tv.Name())
			}
			mergedSize *= extent
		}
	} else if innerMost := InnerMostRootDim(tv); innerMost != nil && !innerMost.IsBroadcast() && !innerMost.IsReduction() {
		extent, err := ev.Evaluate(innerMost.Extent())
		if err != nil {
			return 0, errors.Wrapf(err, "CollectMaxVectorizeSizeWithContigMerge(%s)", tv.Name())
		}
		mergedSize = extent
	}

	vectorSize := int64(1)
	for vectorSize*2 <= maxVectorSizeBytes/itemSize && mergedSize%(vectorSize*2) == 0 {
		vectorSize *= 2
	}
	if klog.V(2).Enabled() {
		klog.Infof("Max vectorize size of %s: %d elements of %d bytes (contiguous merge: %v)",
			tv.Name(), vectorSize, itemSize, fullyContiguous)
	}
	return vectorSize, nil
}
