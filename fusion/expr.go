// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"
	"strings"
)

// OpType identifies the operation performed by an Expr.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go expr.go
const (
	OpTypeInvalid OpType = iota

	// Unary ops.
	OpTypeSet
	OpTypeExp
	OpTypeNeg

	// Binary ops.
	OpTypeAdd
	OpTypeSub
	OpTypeMul
	OpTypeDiv

	// Reduction ops.
	OpTypeSum
	OpTypeMax

	OpTypeBroadcast
	OpTypeView
	OpTypeMma
)

func (op OpType) isUnary() bool {
	return op == OpTypeSet || op == OpTypeExp || op == OpTypeNeg
}

func (op OpType) isBinary() bool {
	return op == OpTypeAdd || op == OpTypeSub || op == OpTypeMul || op == OpTypeDiv
}

func (op OpType) isReduction() bool {
	return op == OpTypeSum || op == OpTypeMax
}

// Expr is one expression of the fusion: an operation connecting input
// TensorViews to output TensorViews.
type Expr interface {
	Op() OpType

	// Inputs and Outputs return slices owned by the expression; callers must
	// not modify them.
	Inputs() []*TensorView
	Outputs() []*TensorView

	String() string

	replaceInput(oldTv, newTv *TensorView)
	replaceOutput(oldTv, newTv *TensorView)
}

// baseExpr carries the operand lists shared by all expression types.
type baseExpr struct {
	op   OpType
	ins  []*TensorView
	outs []*TensorView
}

func (e *baseExpr) Op() OpType { return e.op }

func (e *baseExpr) Inputs() []*TensorView { return e.ins }

func (e *baseExpr) Outputs() []*TensorView { return e.outs }

func (e *baseExpr) replaceInput(oldTv, newTv *TensorView) {
	for ii, tv := range e.ins {
		if tv == oldTv {
			e.ins[ii] = newTv
		}
	}
}

func (e *baseExpr) replaceOutput(oldTv, newTv *TensorView) {
	for ii, tv := range e.outs {
		if tv == oldTv {
			e.outs[ii] = newTv
		}
	}
}

func (e *baseExpr) opName() string { return strings.ToLower(e.op.String()) }

// UnaryOp is an elementwise operation with one input.
type UnaryOp struct {
	baseExpr
}

// In returns the single input operand.
func (e *UnaryOp) In() *TensorView { return e.ins[0] }

// Out returns the single output operand.
func (e *UnaryOp) Out() *TensorView { return e.outs[0] }

func (e *UnaryOp) String() string {
	return fmt.Sprintf("%s = %s(%s)", e.outs[0].Name(), e.opName(), e.ins[0].Name())
}

// BinaryOp is an elementwise operation with two rank-aligned inputs.
type BinaryOp struct {
	baseExpr
}

// Lhs returns the left-hand input operand.
func (e *BinaryOp) Lhs() *TensorView { return e.ins[0] }

// Rhs returns the right-hand input operand.
func (e *BinaryOp) Rhs() *TensorView { return e.ins[1] }

// Out returns the single output operand.
func (e *BinaryOp) Out() *TensorView { return e.outs[0] }

func (e *BinaryOp) String() string {
	return fmt.Sprintf("%s = %s(%s, %s)", e.outs[0].Name(), e.opName(), e.ins[0].Name(), e.ins[1].Name())
}

// ReductionOp reduces one or more axes of its input. The reduced axes appear
// as reduction axes on the output's root domain and are dropped by downstream
// consumers.
type ReductionOp struct {
	baseExpr
	reduceAxes []int
}

// In returns the operand being reduced.
func (e *ReductionOp) In() *TensorView { return e.ins[0] }

// Out returns the reduction result.
func (e *ReductionOp) Out() *TensorView { return e.outs[0] }

// ReduceAxes returns the reduced axis positions, sorted, relative to the
// input's reduction-free domain. The returned slice must not be modified.
func (e *ReductionOp) ReduceAxes() []int { return e.reduceAxes }

func (e *ReductionOp) String() string {
	return fmt.Sprintf("%s = %s(%s, axes=%v)", e.outs[0].Name(), e.opName(), e.ins[0].Name(), e.reduceAxes)
}

// BroadcastOp inserts broadcast axes into its input.
type BroadcastOp struct {
	baseExpr
	isBroadcastDim []bool
}

// In returns the operand being broadcast.
func (e *BroadcastOp) In() *TensorView { return e.ins[0] }

// Out returns the broadcast result.
func (e *BroadcastOp) Out() *TensorView { return e.outs[0] }

// IsBroadcastDim returns, per output axis, whether it is a new broadcast
// axis. The returned slice must not be modified.
func (e *BroadcastOp) IsBroadcastDim() []bool { return e.isBroadcastDim }

func (e *BroadcastOp) String() string {
	return fmt.Sprintf("%s = broadcast(%s, %v)", e.outs[0].Name(), e.ins[0].Name(), e.isBroadcastDim)
}

// ViewOp reshapes its input. The output's root domain mirrors the input and
// its rfactor domain holds the new shape; the transforms in between are
// frozen and replayed onto any operand scheduled like the output.
type ViewOp struct {
	baseExpr
}

// In returns the operand being reshaped.
func (e *ViewOp) In() *TensorView { return e.ins[0] }

// Out returns the reshaped result.
func (e *ViewOp) Out() *TensorView { return e.outs[0] }

func (e *ViewOp) String() string {
	return fmt.Sprintf("%s = view(%s)", e.outs[0].Name(), e.ins[0].Name())
}

// MmaOp is a fused multiply-reduce: out = sum(a*b) over the given axes. Axis
// roles (M, N, K, batch) follow from which operand carries a broadcast at
// each position.
type MmaOp struct {
	baseExpr
	reduceAxes []int
}

// A returns the left matrix operand.
func (e *MmaOp) A() *TensorView { return e.ins[0] }

// B returns the right matrix operand.
func (e *MmaOp) B() *TensorView { return e.ins[1] }

// Out returns the accumulator operand.
func (e *MmaOp) Out() *TensorView { return e.outs[0] }

// ReduceAxes returns the reduced (K) axis positions, sorted. The returned
// slice must not be modified.
func (e *MmaOp) ReduceAxes() []int { return e.reduceAxes }

func (e *MmaOp) String() string {
	return fmt.Sprintf("%s = mma(%s, %s, axes=%v)", e.outs[0].Name(), e.ins[0].Name(), e.ins[1].Name(), e.reduceAxes)
}
