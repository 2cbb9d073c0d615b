// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/gomlx/gofuser/fusion"
)

// RuntimeInfo carries what the analyses know about one concrete invocation
// of a fusion: an evaluator with the input extents bound, and the index type
// the generated kernel will use.
type RuntimeInfo struct {
	ev        *fusion.ExpressionEvaluator
	indexType dtypes.DType
}

// NewRuntimeInfo wraps an evaluator and the kernel index type, which must be
// Int32 or Int64.
func NewRuntimeInfo(ev *fusion.ExpressionEvaluator, indexType dtypes.DType) *RuntimeInfo {
	if indexType != dtypes.Int32 && indexType != dtypes.Int64 {
		exceptions.Panicf("scheduler.NewRuntimeInfo: index type must be Int32 or Int64, got %s", indexType)
	}
	return &RuntimeInfo{ev: ev, indexType: indexType}
}

// Evaluator returns the evaluator bound to this invocation's extents.
func (ri *RuntimeInfo) Evaluator() *fusion.ExpressionEvaluator { return ri.ev }

// IndexType returns the kernel index type.
func (ri *RuntimeInfo) IndexType() dtypes.DType { return ri.indexType }

// DataTypeSize returns the in-kernel size of dtype in bytes. InvalidDType
// marks index-typed values and resolves to the index type's size.
func (ri *RuntimeInfo) DataTypeSize(dtype dtypes.DType) int64 {
	return dataTypeSize(dtype, ri.indexType)
}

func dataTypeSize(dtype, indexType dtypes.DType) int64 {
	if dtype == dtypes.InvalidDType {
		return int64(indexType.Memory())
	}
	return int64(dtype.Memory())
}
