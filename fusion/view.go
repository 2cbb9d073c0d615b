// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gofuser/internal/xslices"
)

type viewSegmentKind int

const (
	viewPassthrough viewSegmentKind = iota
	viewGroup
	viewTrailingIn  // leftover size-1 input axis, merged into the previous axis
	viewTrailingOut // leftover size-1 output axis, split off the previous axis
)

// viewSegment pairs a run of input axes with the run of output dimensions
// holding the same number of elements.
type viewSegment struct {
	kind    viewSegmentKind
	inCount int
	outDims []int64
}

// View reshapes in to outDims. Axes with symbolic extents can only be passed
// through, by giving Symbolic at their position; regrouped runs of axes must
// have constant extents. Reduction axes of the input do not carry over.
//
// The result's root domain mirrors the input, its rfactor domain holds the
// new shape, and the merge/split records in between are frozen: schedulers
// replay them onto neighbors but never undo them.
func (f *Fusion) View(in *TensorView, outDims ...int64) *TensorView {
	f.checkOwned(in, "Fusion.View")
	base := NoReductions(in.MaybeRFactor())
	if len(base) == 0 || len(outDims) == 0 {
		exceptions.Panicf("Fusion.View(%s): scalar views are not supported", in.Name())
	}
	segments := planViewSegments(in, base, outDims)

	root := f.cloneAxes(base)
	out := f.newTensorView(in.dtype, root)
	pos := 0
	for _, seg := range segments {
		switch seg.kind {
		case viewPassthrough:
			pos++
		case viewGroup:
			for n := 1; n < seg.inCount; n++ {
				out.mergeAt(pos, pos+1)
			}
			for t := len(seg.outDims) - 1; t >= 1; t-- {
				out.splitAt(pos, seg.outDims[t])
			}
			pos += len(seg.outDims)
		case viewTrailingIn:
			out.mergeAt(pos-1, pos)
		case viewTrailingOut:
			out.splitAt(pos-1, 1)
			pos++
		}
	}

	// Freeze the transformed shape as the rfactor domain. Axes created by
	// the records are marked rfactor; passthrough axes are not.
	rootSet := make(map[*IterDomain]bool, len(root))
	for _, d := range root {
		rootSet[d] = true
	}
	for _, d := range out.leaf {
		if !rootSet[d] {
			d.rfactor = true
		}
	}
	out.rfactor = append([]*IterDomain{}, out.leaf...)
	out.rfactorRecords = len(out.history)
	out.contiguity = xslices.SliceWithValue(len(out.rfactor), true)

	f.registerExpr(&ViewOp{baseExpr{op: OpTypeView, ins: []*TensorView{in}, outs: []*TensorView{out}}})
	return out
}

// planViewSegments aligns runs of input axes with runs of output dimensions
// of equal element count, walking both lists and extending whichever side
// holds fewer elements.
func planViewSegments(in *TensorView, base []*IterDomain, outDims []int64) []viewSegment {
	var segments []viewSegment
	i, j := 0, 0
	for i < len(base) && j < len(outDims) {
		ext := base[i].Extent()
		if !ext.IsConst() || outDims[j] == Symbolic {
			if !ext.IsConst() && outDims[j] == Symbolic {
				segments = append(segments, viewSegment{kind: viewPassthrough, inCount: 1, outDims: outDims[j : j+1]})
				i++
				j++
				continue
			}
			if !ext.IsConst() {
				exceptions.Panicf("Fusion.View(%s): axis %d extent %s is symbolic, pass it through as Symbolic",
					in.Name(), i, ext)
			}
			exceptions.Panicf("Fusion.View(%s): output dimension %d is Symbolic but input axis %d has extent %s",
				in.Name(), j, i, ext)
		}
		if outDims[j] <= 0 {
			exceptions.Panicf("Fusion.View(%s): output dimension %d is %d, must be positive or Symbolic",
				in.Name(), j, outDims[j])
		}
		p, q := ext.ConstValue(), outDims[j]
		i0, j0 := i, j
		i++
		j++
		for p != q {
			if p < q {
				if i >= len(base) {
					exceptions.Panicf("Fusion.View(%s): sizes do not match %v", in.Name(), outDims)
				}
				ext2 := base[i].Extent()
				if !ext2.IsConst() {
					exceptions.Panicf("Fusion.View(%s): axis %d extent %s is symbolic and cannot be regrouped",
						in.Name(), i, ext2)
				}
				p *= ext2.ConstValue()
				i++
			} else {
				if j >= len(outDims) {
					exceptions.Panicf("Fusion.View(%s): sizes do not match %v", in.Name(), outDims)
				}
				if outDims[j] == Symbolic {
					exceptions.Panicf("Fusion.View(%s): output dimension %d is Symbolic and cannot be regrouped",
						in.Name(), j)
				}
				q *= outDims[j]
				j++
			}
		}
		kind := viewGroup
		if i-i0 == 1 && j-j0 == 1 {
			kind = viewPassthrough
		}
		segments = append(segments, viewSegment{kind: kind, inCount: i - i0, outDims: outDims[j0:j]})
	}
	for ; i < len(base); i++ {
		ext := base[i].Extent()
		if !ext.IsConst() || ext.ConstValue() != 1 {
			exceptions.Panicf("Fusion.View(%s): sizes do not match %v", in.Name(), outDims)
		}
		segments = append(segments, viewSegment{kind: viewTrailingIn, inCount: 1})
	}
	for ; j < len(outDims); j++ {
		if outDims[j] != 1 {
			exceptions.Panicf("Fusion.View(%s): sizes do not match %v", in.Name(), outDims)
		}
		segments = append(segments, viewSegment{kind: viewTrailingOut, outDims: outDims[j : j+1]})
	}
	return segments
}
