// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"sort"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Symbolic marks an input dimension whose size is only known at analysis
// time.
const Symbolic = int64(-1)

// Input creates a fusion input in global memory. Each dimension is either a
// concrete size or Symbolic, in which case a fresh scalar extent (i0, i1,
// ...) is created, to be bound through an ExpressionEvaluator. Dimensions of
// size 1 become broadcast axes, following the convention that size-1
// operands align against any extent.
func (f *Fusion) Input(name string, dtype dtypes.DType, dims ...int64) *TensorView {
	root := make([]*IterDomain, len(dims))
	for ii, dim := range dims {
		switch {
		case dim == Symbolic:
			root[ii] = f.newIterDomain(f.freshScalar(), IterIteration)
		case dim == 1:
			root[ii] = f.newIterDomain(f.Const(1), IterBroadcast)
		case dim > 1:
			root[ii] = f.newIterDomain(f.Const(dim), IterIteration)
		default:
			exceptions.Panicf("Fusion.Input(%q): dimension %d is %d, must be positive or Symbolic",
				name, ii, dim)
		}
	}
	tv := f.newTensorView(dtype, root)
	if name != "" {
		tv.name = name
	}
	tv.memorySpace = MemoryGlobal
	f.inputs = append(f.inputs, tv)
	return tv
}

func (f *Fusion) cloneAxes(axes []*IterDomain) []*IterDomain {
	clones := make([]*IterDomain, len(axes))
	for ii, d := range axes {
		clones[ii] = f.cloneAxis(d)
	}
	return clones
}

// Unary applies an elementwise unary op. Reduction axes of the input do not
// carry over to the result.
func (f *Fusion) Unary(op OpType, in *TensorView) *TensorView {
	f.checkOwned(in, "Fusion.Unary")
	if !op.isUnary() {
		exceptions.Panicf("Fusion.Unary: %s is not a unary op", op)
	}
	out := f.newTensorView(in.dtype, f.cloneAxes(NoReductions(in.MaybeRFactor())))
	f.registerExpr(&UnaryOp{baseExpr{op: op, ins: []*TensorView{in}, outs: []*TensorView{out}}})
	return out
}

// Set copies in. Caching inserts these to stage an operand in another memory
// space.
func (f *Fusion) Set(in *TensorView) *TensorView { return f.Unary(OpTypeSet, in) }

// Exp is the elementwise exponential of in.
func (f *Fusion) Exp(in *TensorView) *TensorView { return f.Unary(OpTypeExp, in) }

// Neg is the elementwise negation of in.
func (f *Fusion) Neg(in *TensorView) *TensorView { return f.Unary(OpTypeNeg, in) }

// Binary applies an elementwise binary op to two operands of the same rank.
// Broadcast axes align against any extent of the other operand; mismatching
// concrete extents panic. Operands of different ranks must be broadcast
// explicitly first.
func (f *Fusion) Binary(op OpType, lhs, rhs *TensorView) *TensorView {
	f.checkOwned(lhs, "Fusion.Binary")
	f.checkOwned(rhs, "Fusion.Binary")
	if !op.isBinary() {
		exceptions.Panicf("Fusion.Binary: %s is not a binary op", op)
	}
	baseL := NoReductions(lhs.MaybeRFactor())
	baseR := NoReductions(rhs.MaybeRFactor())
	if len(baseL) != len(baseR) {
		exceptions.Panicf("Fusion.Binary(%s): operands %s and %s have ranks %d and %d, broadcast explicitly first",
			op, lhs.Name(), rhs.Name(), len(baseL), len(baseR))
	}
	root := make([]*IterDomain, len(baseL))
	for ii := range baseL {
		dl, dr := baseL[ii], baseR[ii]
		switch {
		case dl.IsBroadcast() && !dr.IsBroadcast():
			root[ii] = f.cloneAxis(dr)
		case !dl.IsBroadcast() && dr.IsBroadcast():
			root[ii] = f.cloneAxis(dl)
		default:
			if dl.extent.IsConst() && dr.extent.IsConst() && dl.extent.value != dr.extent.value {
				exceptions.Panicf("Fusion.Binary(%s): axis %d extents %s and %s do not match",
					op, ii, dl.extent, dr.extent)
			}
			root[ii] = f.cloneAxis(dl)
		}
	}
	out := f.newTensorView(lhs.dtype, root)
	f.registerExpr(&BinaryOp{baseExpr{op: op, ins: []*TensorView{lhs, rhs}, outs: []*TensorView{out}}})
	return out
}

// Add is the elementwise sum of lhs and rhs.
func (f *Fusion) Add(lhs, rhs *TensorView) *TensorView { return f.Binary(OpTypeAdd, lhs, rhs) }

// Sub is the elementwise difference of lhs and rhs.
func (f *Fusion) Sub(lhs, rhs *TensorView) *TensorView { return f.Binary(OpTypeSub, lhs, rhs) }

// Mul is the elementwise product of lhs and rhs.
func (f *Fusion) Mul(lhs, rhs *TensorView) *TensorView { return f.Binary(OpTypeMul, lhs, rhs) }

// Div is the elementwise quotient of lhs and rhs.
func (f *Fusion) Div(lhs, rhs *TensorView) *TensorView { return f.Binary(OpTypeDiv, lhs, rhs) }

// Reduction reduces the given axes of in. Positions are relative to in's
// reduction-free domain and may be negative. The result keeps the reduced
// axes in its root domain marked as reductions; downstream consumers drop
// them. Reducing a broadcast axis yields a trivial reduction.
func (f *Fusion) Reduction(op OpType, in *TensorView, axes ...int) *TensorView {
	f.checkOwned(in, "Fusion.Reduction")
	if !op.isReduction() {
		exceptions.Panicf("Fusion.Reduction: %s is not a reduction op", op)
	}
	base := NoReductions(in.MaybeRFactor())
	if len(axes) == 0 {
		exceptions.Panicf("Fusion.Reduction(%s, %s): no axes to reduce", op, in.Name())
	}
	reduce := make(map[int]bool, len(axes))
	sorted := make([]int, 0, len(axes))
	for _, axis := range axes {
		pos := normalizeAxisIn(axis, len(base), in.Name(), "Fusion.Reduction")
		if reduce[pos] {
			exceptions.Panicf("Fusion.Reduction(%s, %s): axis %d reduced twice", op, in.Name(), axis)
		}
		reduce[pos] = true
		sorted = append(sorted, pos)
	}
	sort.Ints(sorted)
	root := make([]*IterDomain, len(base))
	for ii, d := range base {
		if reduce[ii] {
			root[ii] = f.newIterDomain(d.extent, IterReduction)
		} else {
			root[ii] = f.cloneAxis(d)
		}
	}
	out := f.newTensorView(in.dtype, root)
	f.registerExpr(&ReductionOp{
		baseExpr:   baseExpr{op: op, ins: []*TensorView{in}, outs: []*TensorView{out}},
		reduceAxes: sorted,
	})
	return out
}

// Sum reduces the given axes of in by addition.
func (f *Fusion) Sum(in *TensorView, axes ...int) *TensorView {
	return f.Reduction(OpTypeSum, in, axes...)
}

// Max reduces the given axes of in by maximum.
func (f *Fusion) Max(in *TensorView, axes ...int) *TensorView {
	return f.Reduction(OpTypeMax, in, axes...)
}

// Broadcast inserts broadcast axes into in. isBroadcastDim has one entry per
// output axis: true positions become fresh broadcast axes, false positions
// consume in's axes in order.
func (f *Fusion) Broadcast(in *TensorView, isBroadcastDim ...bool) *TensorView {
	f.checkOwned(in, "Fusion.Broadcast")
	base := NoReductions(in.MaybeRFactor())
	concrete := 0
	for _, isB := range isBroadcastDim {
		if !isB {
			concrete++
		}
	}
	if concrete != len(base) {
		exceptions.Panicf("Fusion.Broadcast(%s): mask keeps %d concrete axes but the operand has %d",
			in.Name(), concrete, len(base))
	}
	root := make([]*IterDomain, 0, len(isBroadcastDim))
	next := 0
	for _, isB := range isBroadcastDim {
		if isB {
			root = append(root, f.newIterDomain(f.Const(1), IterBroadcast))
		} else {
			root = append(root, f.cloneAxis(base[next]))
			next++
		}
	}
	out := f.newTensorView(in.dtype, root)
	f.registerExpr(&BroadcastOp{
		baseExpr:       baseExpr{op: OpTypeBroadcast, ins: []*TensorView{in}, outs: []*TensorView{out}},
		isBroadcastDim: append([]bool{}, isBroadcastDim...),
	})
	return out
}

// Mma multiplies a and b elementwise and reduces the given axes, the fused
// form a matmul lowers to. Both operands must have the same rank, aligned so
// that each position holds one of: the contraction (both concrete, listed in
// reduceAxes), M (concrete on a, broadcast on b), N (broadcast on a,
// concrete on b), or batch (concrete on both).
func (f *Fusion) Mma(a, b *TensorView, reduceAxes ...int) *TensorView {
	f.checkOwned(a, "Fusion.Mma")
	f.checkOwned(b, "Fusion.Mma")
	baseA := NoReductions(a.MaybeRFactor())
	baseB := NoReductions(b.MaybeRFactor())
	if len(baseA) != len(baseB) {
		exceptions.Panicf("Fusion.Mma: operands %s and %s have ranks %d and %d",
			a.Name(), b.Name(), len(baseA), len(baseB))
	}
	if len(reduceAxes) == 0 {
		exceptions.Panicf("Fusion.Mma(%s, %s): no contraction axes", a.Name(), b.Name())
	}
	reduce := make(map[int]bool, len(reduceAxes))
	sorted := make([]int, 0, len(reduceAxes))
	for _, axis := range reduceAxes {
		pos := normalizeAxisIn(axis, len(baseA), a.Name(), "Fusion.Mma")
		if reduce[pos] {
			exceptions.Panicf("Fusion.Mma(%s, %s): axis %d reduced twice", a.Name(), b.Name(), axis)
		}
		reduce[pos] = true
		sorted = append(sorted, pos)
	}
	sort.Ints(sorted)
	root := make([]*IterDomain, len(baseA))
	for ii := range baseA {
		da, db := baseA[ii], baseB[ii]
		switch {
		case reduce[ii]:
			if da.IsBroadcast() || db.IsBroadcast() {
				exceptions.Panicf("Fusion.Mma(%s, %s): contraction axis %d must be concrete on both operands",
					a.Name(), b.Name(), ii)
			}
			root[ii] = f.newIterDomain(da.extent, IterReduction)
		case da.IsBroadcast() && db.IsBroadcast():
			root[ii] = f.cloneAxis(da)
		case da.IsBroadcast():
			root[ii] = f.cloneAxis(db)
		case db.IsBroadcast():
			root[ii] = f.cloneAxis(da)
		default:
			if da.extent.IsConst() && db.extent.IsConst() && da.extent.value != db.extent.value {
				exceptions.Panicf("Fusion.Mma(%s, %s): batch axis %d extents %s and %s do not match",
					a.Name(), b.Name(), ii, da.extent, db.extent)
			}
			root[ii] = f.cloneAxis(da)
		}
	}
	out := f.newTensorView(a.dtype, root)
	f.registerExpr(&MmaOp{
		baseExpr:   baseExpr{op: OpTypeMma, ins: []*TensorView{a, b}, outs: []*TensorView{out}},
		reduceAxes: sorted,
	})
	return out
}

func normalizeAxisIn(axis, n int, name, context string) int {
	pos := axis
	if pos < 0 {
		pos += n
	}
	if pos < 0 || pos >= n {
		exceptions.Panicf("%s: axis %d out of range for %s with %d axes", context, axis, name, n)
	}
	return pos
}

func (f *Fusion) addSet(in, out *TensorView) {
	f.registerExpr(&UnaryOp{baseExpr{op: OpTypeSet, ins: []*TensorView{in}, outs: []*TensorView{out}}})
}
