// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

type valKind int

const (
	valConst valKind = iota
	valScalar
	valMul
	valCeilDiv
)

// Val is a symbolic integer used for axis extents. It is either a constant, a
// named scalar bound at evaluation time, or the product / ceiling-division of
// two other Vals, built up as axes are split and merged.
//
// Vals are immutable and may be shared across IterDomains and TensorViews.
type Val struct {
	kind     valKind
	value    int64 // valConst only
	name     string
	lhs, rhs *Val
}

// Const creates a constant Val.
func (f *Fusion) Const(value int64) *Val {
	return &Val{kind: valConst, value: value}
}

// Scalar creates a named scalar Val, to be bound through an
// ExpressionEvaluator. Names must be unique within the fusion; Fusion.Input
// creates scalars named i0, i1, ... for symbolic dimensions.
func (f *Fusion) Scalar(name string) *Val {
	return &Val{kind: valScalar, name: name}
}

func (f *Fusion) freshScalar() *Val {
	v := f.Scalar(fmt.Sprintf("i%d", f.nextScalarID))
	f.nextScalarID++
	return v
}

// IsConst reports whether v is a compile-time constant.
func (v *Val) IsConst() bool { return v.kind == valConst }

// ConstValue returns the constant value of v. It panics if v is not constant.
func (v *Val) ConstValue() int64 {
	if v.kind != valConst {
		exceptions.Panicf("Val.ConstValue: %s is not constant", v)
	}
	return v.value
}

// String returns the value for constants, the name for scalars and an infix
// rendering for derived Vals.
func (v *Val) String() string {
	switch v.kind {
	case valConst:
		return fmt.Sprintf("%d", v.value)
	case valScalar:
		return v.name
	case valMul:
		return fmt.Sprintf("(%s * %s)", v.lhs, v.rhs)
	case valCeilDiv:
		return fmt.Sprintf("ceilDiv(%s, %s)", v.lhs, v.rhs)
	}
	return "?"
}

// mulVal builds lhs*rhs, folding constants and the identity (1*x == x).
func mulVal(lhs, rhs *Val) *Val {
	if lhs.IsConst() && rhs.IsConst() {
		return &Val{kind: valConst, value: lhs.value * rhs.value}
	}
	if lhs.IsConst() && lhs.value == 1 {
		return rhs
	}
	if rhs.IsConst() && rhs.value == 1 {
		return lhs
	}
	return &Val{kind: valMul, lhs: lhs, rhs: rhs}
}

// ceilDivVal builds ceilDiv(lhs, rhs), folding constants.
func ceilDivVal(lhs, rhs *Val) *Val {
	if lhs.IsConst() && rhs.IsConst() {
		return &Val{kind: valConst, value: (lhs.value + rhs.value - 1) / rhs.value}
	}
	if rhs.IsConst() && rhs.value == 1 {
		return lhs
	}
	return &Val{kind: valCeilDiv, lhs: lhs, rhs: rhs}
}

// ExpressionEvaluator resolves Vals to concrete sizes, given bindings for the
// fusion's scalar extents. Evaluations are memoized, so an evaluator must not
// be reused after re-binding would be needed -- create a new one instead.
type ExpressionEvaluator struct {
	fusion *Fusion
	known  map[string]int64
	memo   map[*Val]int64
}

// NewEvaluator creates an ExpressionEvaluator with no bindings.
func (f *Fusion) NewEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		fusion: f,
		known:  make(map[string]int64),
		memo:   make(map[*Val]int64),
	}
}

// Bind assigns a concrete size to the named scalar. Sizes must be positive.
// Binding the same name twice to different values panics.
func (ev *ExpressionEvaluator) Bind(name string, value int64) *ExpressionEvaluator {
	if value <= 0 {
		exceptions.Panicf("ExpressionEvaluator.Bind(%q, %d): extents must be positive", name, value)
	}
	if prev, found := ev.known[name]; found && prev != value {
		exceptions.Panicf("ExpressionEvaluator.Bind(%q, %d): already bound to %d", name, value, prev)
	}
	ev.known[name] = value
	return ev
}

// BindExtentsOf binds the root axes of tv to the given dimensions, which must
// match tv's root rank. Constant axes are checked against dims instead.
func (ev *ExpressionEvaluator) BindExtentsOf(tv *TensorView, dims ...int64) error {
	root := tv.Root()
	if len(dims) != len(root) {
		return errors.Errorf("BindExtentsOf(%s): got %d dimensions for rank %d", tv.Name(), len(dims), len(root))
	}
	for ii, d := range root {
		extent := d.Extent()
		if extent.IsConst() {
			if extent.value != dims[ii] {
				return errors.Errorf("BindExtentsOf(%s): axis %d has fixed extent %d, cannot bind to %d",
					tv.Name(), ii, extent.value, dims[ii])
			}
			continue
		}
		if extent.kind == valScalar {
			ev.Bind(extent.name, dims[ii])
			continue
		}
		return errors.Errorf("BindExtentsOf(%s): axis %d extent %s is derived, bind the root scalars instead",
			tv.Name(), ii, extent)
	}
	return nil
}

// Evaluate resolves v to a concrete size. It returns an error if v depends on
// an unbound scalar.
func (ev *ExpressionEvaluator) Evaluate(v *Val) (value int64, err error) {
	if got, found := ev.memo[v]; found {
		return got, nil
	}
	switch v.kind {
	case valConst:
		value = v.value
	case valScalar:
		var found bool
		value, found = ev.known[v.name]
		if !found {
			err = errors.Errorf("extent %s is not bound", v.name)
			return
		}
	case valMul:
		var lhs, rhs int64
		if lhs, err = ev.Evaluate(v.lhs); err != nil {
			return
		}
		if rhs, err = ev.Evaluate(v.rhs); err != nil {
			return
		}
		value = lhs * rhs
	case valCeilDiv:
		var lhs, rhs int64
		if lhs, err = ev.Evaluate(v.lhs); err != nil {
			return
		}
		if rhs, err = ev.Evaluate(v.rhs); err != nil {
			return
		}
		value = (lhs + rhs - 1) / rhs
	}
	ev.memo[v] = value
	return
}
