// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fusion defines the tensor dataflow graph ("fusion") consumed by the
// scheduling analyses in github.com/gomlx/gofuser/scheduler.
//
// A Fusion is a DAG of TensorView operands connected by expressions drawn
// from a restricted operator vocabulary: elementwise unary/binary ops,
// reductions, broadcasts, views (reshapes) and matmul-style fused
// multiply-reduce (MmaOp). Each TensorView carries an ordered list of
// IterDomain axes. Scheduling rewrites the axis structure in place through
// split/merge/reorder transforms recorded in an append-only history, so any
// transformed axis can be traced back to the axes of the operand's declared
// shape.
//
// Extents are symbolic (*Val); an ExpressionEvaluator resolves them to
// concrete sizes once the caller binds the fusion's input dimensions.
//
// A Fusion and everything it owns is not safe for concurrent use: it must be
// built and scheduled by one goroutine at a time.
package fusion

import (
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gofuser/internal/xslices"
	"github.com/google/uuid"
)

// Fusion is a dataflow graph of TensorView operands connected by expressions.
type Fusion struct {
	id uuid.UUID

	nextAxisID   int
	nextScalarID int
	nextTvID     int

	exprs   []Expr
	inputs  []*TensorView
	outputs []*TensorView
	tvs     []*TensorView // every TensorView created on this fusion, in creation order

	definition map[*TensorView]Expr
	uses       map[*TensorView][]Expr
}

// New creates an empty Fusion.
func New() *Fusion {
	return &Fusion{
		id:         uuid.New(),
		definition: make(map[*TensorView]Expr),
		uses:       make(map[*TensorView][]Expr),
	}
}

// ID uniquely identifies this fusion instance. Caches owned by heuristic
// drivers use it to detect accidental reuse across distinct graphs.
func (f *Fusion) ID() uuid.UUID { return f.id }

// Inputs returns the fusion inputs, in the order they were created.
// The returned slice is owned by the Fusion and must not be modified.
func (f *Fusion) Inputs() []*TensorView { return f.inputs }

// Outputs returns the fusion outputs, in the order they were added.
// The returned slice is owned by the Fusion and must not be modified.
func (f *Fusion) Outputs() []*TensorView { return f.outputs }

// Exprs returns every expression of the fusion in creation order.
// The returned slice is owned by the Fusion and must not be modified.
func (f *Fusion) Exprs() []Expr { return f.exprs }

// AddOutput marks tv as a fusion output and moves it to global memory.
func (f *Fusion) AddOutput(tv *TensorView) {
	f.checkOwned(tv, "Fusion.AddOutput")
	if tv.IsFusionOutput() {
		exceptions.Panicf("Fusion.AddOutput: %s is already an output", tv.Name())
	}
	tv.memorySpace = MemoryGlobal
	f.outputs = append(f.outputs, tv)
}

// ReplaceOutput swaps oldTv for newTv in the output list, keeping its
// position. Used by TensorView.CacheFork.
func (f *Fusion) ReplaceOutput(oldTv, newTv *TensorView) {
	for ii, tv := range f.outputs {
		if tv == oldTv {
			f.outputs[ii] = newTv
			newTv.memorySpace = MemoryGlobal
			return
		}
	}
	exceptions.Panicf("Fusion.ReplaceOutput: %s is not an output of the fusion", oldTv.Name())
}

// AllTensorViews returns every operand of the fusion -- inputs, outputs and
// intermediates -- in deterministic creation order.
func (f *Fusion) AllTensorViews() []*TensorView {
	return xslices.Copy(f.tvs)
}

// DefinitionOf returns the expression that produces tv, or nil for fusion
// inputs.
func (f *Fusion) DefinitionOf(tv *TensorView) Expr { return f.definition[tv] }

// UsesOf returns the expressions that consume tv, in creation order.
// The returned slice is owned by the Fusion and must not be modified.
func (f *Fusion) UsesOf(tv *TensorView) []Expr { return f.uses[tv] }

// ProducersOf returns the operands directly consumed by tv's definition.
func (f *Fusion) ProducersOf(tv *TensorView) []*TensorView {
	def := f.definition[tv]
	if def == nil {
		return nil
	}
	return def.Inputs()
}

// ConsumersOf returns the operands directly produced from tv, deduplicated,
// in creation order.
func (f *Fusion) ConsumersOf(tv *TensorView) []*TensorView {
	var consumers []*TensorView
	seen := make(map[*TensorView]bool)
	for _, e := range f.uses[tv] {
		for _, out := range e.Outputs() {
			if !seen[out] {
				seen[out] = true
				consumers = append(consumers, out)
			}
		}
	}
	return consumers
}

// String lists the fusion expressions, one per line.
func (f *Fusion) String() string {
	var sb strings.Builder
	sb.WriteString("Fusion{\n")
	for _, tv := range f.inputs {
		sb.WriteString("  input ")
		sb.WriteString(tv.String())
		sb.WriteString("\n")
	}
	for _, e := range f.exprs {
		sb.WriteString("  ")
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	for _, tv := range f.outputs {
		sb.WriteString("  output ")
		sb.WriteString(tv.Name())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// registerExpr appends e and indexes its definition/use edges.
func (f *Fusion) registerExpr(e Expr) {
	f.exprs = append(f.exprs, e)
	for _, out := range e.Outputs() {
		if f.definition[out] != nil {
			exceptions.Panicf("fusion: operand %s defined twice", out.Name())
		}
		f.definition[out] = e
	}
	for _, in := range e.Inputs() {
		f.uses[in] = append(f.uses[in], e)
	}
}

func (f *Fusion) checkOwned(tv *TensorView, context string) {
	if tv == nil {
		exceptions.Panicf("%s: nil operand", context)
	}
	if tv.fusion != f {
		exceptions.Panicf("%s: operand %s belongs to a different fusion", context, tv.Name())
	}
}
