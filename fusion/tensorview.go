// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gofuser/internal/xslices"
	"github.com/gomlx/gopjrt/dtypes"
)

// TransformKind discriminates the entries of a TensorView's transform
// history.
type TransformKind int

//go:generate go tool enumer -type=TransformKind -trimprefix=Transform -output=gen_transformkind_enumer.go tensorview.go
const (
	TransformSplit TransformKind = iota
	TransformMerge
)

// TransformRecord is one entry of a TensorView's append-only transform
// history. Axes are referenced by id, so records stay valid as the leaf
// domain evolves. Unused fields hold -1.
//
// For TransformSplit, In is the split axis, Outer and Inner the two results
// and Factor the inner extent. For TransformMerge, Outer and Inner are the
// operands (outer side first) and Out the result.
type TransformRecord struct {
	Kind                  TransformKind
	In, Outer, Inner, Out int
	Factor                int64
}

func (r TransformRecord) String() string {
	if r.Kind == TransformSplit {
		return fmt.Sprintf("split(%d, %d) -> (%d, %d)", r.In, r.Factor, r.Outer, r.Inner)
	}
	return fmt.Sprintf("merge(%d, %d) -> %d", r.Outer, r.Inner, r.Out)
}

// TensorView is one operand of a Fusion: an element type plus an ordered list
// of IterDomain axes, rewritten in place by scheduling.
//
// Three views of the axes coexist. Root is the domain the operand was created
// with. RFactor, when present, is the shape frozen by a view; it is what
// consumers align against. Leaf is the current loop structure, derived from
// Root through the transform history.
type TensorView struct {
	fusion *Fusion
	name   string
	dtype  dtypes.DType

	root    []*IterDomain
	rfactor []*IterDomain
	leaf    []*IterDomain

	history        []TransformRecord
	rfactorRecords int // prefix of history frozen into the rfactor domain

	contiguity   []bool
	memorySpace  MemorySpace
	computeAtPos int

	axes map[int]*IterDomain // every axis this operand ever owned, by id
}

func (f *Fusion) newTensorView(dtype dtypes.DType, root []*IterDomain) *TensorView {
	tv := &TensorView{
		fusion:     f,
		name:       fmt.Sprintf("t%d", f.nextTvID),
		dtype:      dtype,
		root:       root,
		leaf:       append([]*IterDomain{}, root...),
		contiguity: xslices.SliceWithValue(len(root), true),
		axes:       make(map[int]*IterDomain, len(root)),
	}
	f.nextTvID++
	for _, d := range root {
		tv.axes[d.id] = d
	}
	f.tvs = append(f.tvs, tv)
	return tv
}

// Name returns the operand's name, unique within its fusion (t0, t1, ...).
func (tv *TensorView) Name() string { return tv.name }

// DType returns the element type.
func (tv *TensorView) DType() dtypes.DType { return tv.dtype }

// Fusion returns the owning fusion.
func (tv *TensorView) Fusion() *Fusion { return tv.fusion }

// NDims returns the current number of leaf axes.
func (tv *TensorView) NDims() int { return len(tv.leaf) }

// Root returns the domain the operand was created with. The returned slice
// is owned by the TensorView and must not be modified.
func (tv *TensorView) Root() []*IterDomain { return tv.root }

// RFactor returns the domain frozen by a view, or nil when there is none.
// The returned slice is owned by the TensorView and must not be modified.
func (tv *TensorView) RFactor() []*IterDomain { return tv.rfactor }

// MaybeRFactor returns the rfactor domain when present, the root otherwise.
// This is the shape consumers align against. The returned slice is owned by
// the TensorView and must not be modified.
func (tv *TensorView) MaybeRFactor() []*IterDomain {
	if tv.rfactor != nil {
		return tv.rfactor
	}
	return tv.root
}

// Leaf returns the current loop axes. The returned slice is owned by the
// TensorView and must not be modified.
func (tv *TensorView) Leaf() []*IterDomain { return tv.leaf }

// History returns the transform records deriving Leaf from Root. The
// returned slice is owned by the TensorView and must not be modified.
func (tv *TensorView) History() []TransformRecord { return tv.history }

// RFactorRecords returns how many leading history records are frozen into
// the rfactor domain.
func (tv *TensorView) RFactorRecords() int { return tv.rfactorRecords }

// Axis returns the leaf axis at the given position. Negative positions count
// from the end.
func (tv *TensorView) Axis(axis int) *IterDomain {
	return tv.leaf[tv.normalizePos(axis, "TensorView.Axis")]
}

func (tv *TensorView) axisByID(id int) *IterDomain { return tv.axes[id] }

// HasReduction reports whether the operand carries reduction axes.
func (tv *TensorView) HasReduction() bool {
	for _, d := range tv.MaybeRFactor() {
		if d.IsReduction() {
			return true
		}
	}
	return false
}

// HasBroadcast reports whether the operand carries broadcast axes.
func (tv *TensorView) HasBroadcast() bool {
	for _, d := range tv.MaybeRFactor() {
		if d.IsBroadcast() {
			return true
		}
	}
	return false
}

// HasRFactor reports whether the operand has a frozen rfactor domain.
func (tv *TensorView) HasRFactor() bool { return tv.rfactor != nil }

// IsFusionInput reports whether the operand is an input of its fusion.
func (tv *TensorView) IsFusionInput() bool {
	for _, in := range tv.fusion.inputs {
		if in == tv {
			return true
		}
	}
	return false
}

// IsFusionOutput reports whether the operand is an output of its fusion.
func (tv *TensorView) IsFusionOutput() bool {
	for _, out := range tv.fusion.outputs {
		if out == tv {
			return true
		}
	}
	return false
}

// MemorySpace returns where the operand is materialized.
func (tv *TensorView) MemorySpace() MemorySpace { return tv.memorySpace }

// SetMemorySpace moves the operand to the given memory space.
func (tv *TensorView) SetMemorySpace(ms MemorySpace) { tv.memorySpace = ms }

// Contiguity returns, per MaybeRFactor axis, whether it is contiguous with
// the next axis in memory. The returned slice is owned by the TensorView and
// must not be modified.
func (tv *TensorView) Contiguity() []bool { return tv.contiguity }

// SetContiguity overrides the contiguity flags. One value per MaybeRFactor
// axis.
func (tv *TensorView) SetContiguity(contiguity ...bool) {
	if len(contiguity) != len(tv.MaybeRFactor()) {
		exceptions.Panicf("TensorView.SetContiguity(%s): got %d flags for %d axes",
			tv.name, len(contiguity), len(tv.MaybeRFactor()))
	}
	tv.contiguity = append([]bool{}, contiguity...)
}

// ComputeAtPos returns how many leading leaf axes are shared with the
// operand's consumer loop nest. Zero means fully independent.
func (tv *TensorView) ComputeAtPos() int { return tv.computeAtPos }

// SetComputeAtPos records that the first pos leaf axes are computed inside
// the consumer's loop nest.
func (tv *TensorView) SetComputeAtPos(pos int) {
	if pos < 0 || pos > len(tv.leaf) {
		exceptions.Panicf("TensorView.SetComputeAtPos(%s, %d): position out of range for %d axes",
			tv.name, pos, len(tv.leaf))
	}
	tv.computeAtPos = pos
}

// HasComputeAt reports whether any leaf axes are inlined into a consumer.
func (tv *TensorView) HasComputeAt() bool { return tv.computeAtPos > 0 }

// Split breaks the leaf axis at the given position into an outer axis of
// extent ceilDiv(extent, factor) and an inner axis of extent factor, in
// place. Negative positions count from the end. Returns tv for chaining.
func (tv *TensorView) Split(axis int, factor int64) *TensorView {
	pos := tv.normalizePos(axis, "TensorView.Split")
	if factor <= 0 {
		exceptions.Panicf("TensorView.Split(%s, axis=%d, factor=%d): factor must be positive",
			tv.name, axis, factor)
	}
	tv.splitAt(pos, factor)
	return tv
}

func (tv *TensorView) splitAt(pos int, factor int64) {
	d := tv.leaf[pos]
	if d.parallel != ParallelSerial {
		exceptions.Panicf("TensorView.Split(%s): axis %s is already parallelized", tv.name, d)
	}
	f := tv.fusion
	factorVal := f.Const(factor)
	outer := f.newIterDomain(ceilDivVal(d.extent, factorVal), d.iterType)
	inner := f.newIterDomain(factorVal, d.iterType)
	tv.axes[outer.id] = outer
	tv.axes[inner.id] = inner
	tv.history = append(tv.history, TransformRecord{
		Kind: TransformSplit, In: d.id, Outer: outer.id, Inner: inner.id, Out: -1, Factor: factor})
	newLeaf := make([]*IterDomain, 0, len(tv.leaf)+1)
	newLeaf = append(newLeaf, tv.leaf[:pos]...)
	newLeaf = append(newLeaf, outer, inner)
	newLeaf = append(newLeaf, tv.leaf[pos+1:]...)
	tv.leaf = newLeaf
}

// Merge combines two leaf axes into one of extent outer*inner, placed at the
// smaller of the two positions, in place. The first argument becomes the
// outer side of the combined iteration order. Negative positions count from
// the end. Returns tv for chaining.
func (tv *TensorView) Merge(outer, inner int) *TensorView {
	po := tv.normalizePos(outer, "TensorView.Merge")
	pi := tv.normalizePos(inner, "TensorView.Merge")
	if po == pi {
		exceptions.Panicf("TensorView.Merge(%s): cannot merge axis %d with itself", tv.name, outer)
	}
	tv.mergeAt(po, pi)
	return tv
}

func (tv *TensorView) mergeAt(po, pi int) {
	do, di := tv.leaf[po], tv.leaf[pi]
	if do.parallel != ParallelSerial || di.parallel != ParallelSerial {
		exceptions.Panicf("TensorView.Merge(%s): axes %s and %s must not be parallelized", tv.name, do, di)
	}
	iterType := mergedIterType(do, di, tv.name)
	f := tv.fusion
	out := f.newIterDomain(mulVal(do.extent, di.extent), iterType)
	tv.axes[out.id] = out
	tv.history = append(tv.history, TransformRecord{
		Kind: TransformMerge, In: -1, Outer: do.id, Inner: di.id, Out: out.id})
	lo := po
	if pi < lo {
		lo = pi
	}
	newLeaf := make([]*IterDomain, 0, len(tv.leaf)-1)
	for ii, d := range tv.leaf {
		if ii == lo {
			newLeaf = append(newLeaf, out)
			continue
		}
		if d == do || d == di {
			continue
		}
		newLeaf = append(newLeaf, d)
	}
	tv.leaf = newLeaf
}

func mergedIterType(do, di *IterDomain, name string) IterType {
	if do.iterType == di.iterType {
		return do.iterType
	}
	if do.iterType == IterBroadcast {
		return di.iterType
	}
	if di.iterType == IterBroadcast {
		return do.iterType
	}
	exceptions.Panicf("TensorView.Merge(%s): cannot merge %s axis %s with %s axis %s",
		name, do.iterType, do, di.iterType, di)
	return IterIteration
}

// Reorder permutes the leaf axes in place. old2new maps old positions to new
// positions; unspecified axes fill the remaining slots preserving their
// relative order. Positions may be negative. Returns tv for chaining.
func (tv *TensorView) Reorder(old2new map[int]int) *TensorView {
	n := len(tv.leaf)
	norm := make(map[int]int, len(old2new))
	usedNew := make(map[int]int, len(old2new))
	for oldPos, newPos := range old2new {
		op := tv.normalizePos(oldPos, "TensorView.Reorder")
		np := tv.normalizePos(newPos, "TensorView.Reorder")
		if _, dup := norm[op]; dup {
			exceptions.Panicf("TensorView.Reorder(%s): axis %d specified twice", tv.name, oldPos)
		}
		if prev, dup := usedNew[np]; dup {
			exceptions.Panicf("TensorView.Reorder(%s): axes %d and %d both map to position %d",
				tv.name, prev, op, np)
		}
		norm[op] = np
		usedNew[np] = op
	}
	newLeaf := make([]*IterDomain, n)
	for op, np := range norm {
		newLeaf[np] = tv.leaf[op]
	}
	free := 0
	for op := 0; op < n; op++ {
		if _, specified := norm[op]; specified {
			continue
		}
		for newLeaf[free] != nil {
			free++
		}
		newLeaf[free] = tv.leaf[op]
	}
	tv.leaf = newLeaf
	return tv
}

func (tv *TensorView) normalizePos(axis int, context string) int {
	pos := axis
	if pos < 0 {
		pos += len(tv.leaf)
	}
	if pos < 0 || pos >= len(tv.leaf) {
		exceptions.Panicf("%s: axis %d out of range for %s with %d axes",
			context, axis, tv.name, len(tv.leaf))
	}
	return pos
}

// String renders the operand with its current leaf axes, e.g.
// "t2 (Float32) [i5{128}:TIDx, r7{ceilDiv(i0, 128)}]".
func (tv *TensorView) String() string {
	parts := make([]string, len(tv.leaf))
	for ii, d := range tv.leaf {
		parts[ii] = d.String()
	}
	return fmt.Sprintf("%s (%s) [%s]", tv.name, tv.dtype, strings.Join(parts, ", "))
}

// NoReductions filters reduction axes out of a domain, preserving order.
func NoReductions(axes []*IterDomain) []*IterDomain {
	result := make([]*IterDomain, 0, len(axes))
	for _, d := range axes {
		if !d.IsReduction() {
			result = append(result, d)
		}
	}
	return result
}
