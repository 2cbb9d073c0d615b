// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/gofuser/fusion"
)

// CacheInputs caches every used fusion input in register space when the
// schedule will unroll, returning the new caches. Without unrolling no
// caches are inserted.
func CacheInputs(f *fusion.Fusion, unroll bool) []*fusion.TensorView {
	if !unroll {
		return nil
	}
	var cached []*fusion.TensorView
	for _, in := range f.Inputs() {
		if len(f.UsesOf(in)) == 0 {
			continue
		}
		cached = append(cached, in.CacheAfter())
	}
	return cached
}

// CachedOutput pairs a fusion output with the register-space cache now
// computing it.
type CachedOutput struct {
	Cache  *fusion.TensorView
	Output *fusion.TensorView
}

// CacheAndForkOutputs prepares the fusion outputs for scheduling. Outputs
// consumed inside the fusion are forked so the stored operand has no other
// consumers. When the schedule will unroll, each computed output is then
// cached in register space and written out from the cache; the pairs are
// returned.
func CacheAndForkOutputs(f *fusion.Fusion, unroll bool) []CachedOutput {
	var cached []CachedOutput
	for _, output := range f.Outputs() {
		if f.DefinitionOf(output) == nil {
			// An input forwarded straight to an output is not scheduled.
			continue
		}
		if len(f.UsesOf(output)) > 0 {
			output = output.CacheFork()
		}
		if !unroll {
			continue
		}
		cached = append(cached, CachedOutput{Cache: output.CacheBefore(), Output: output})
	}
	return cached
}

// ClearMemorySpace resets stale memory assignments before a fresh
// scheduling pass: inputs and outputs to global memory, everything else to
// registers.
func ClearMemorySpace(f *fusion.Fusion) {
	for _, tv := range f.AllTensorViews() {
		if tv.IsFusionInput() || tv.IsFusionOutput() {
			tv.SetMemorySpace(fusion.MemoryGlobal)
		} else {
			tv.SetMemorySpace(fusion.MemoryLocal)
		}
	}
}
