// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gofuser/internal/xslices"
)

// CacheAfter inserts a copy of tv between tv and all of its current uses, so
// tv is read once and staged through the cache's memory space. The cache
// starts in local memory with a fresh reduction-free root; the caller
// schedules it. Returns the new cache operand.
func (tv *TensorView) CacheAfter() *TensorView {
	f := tv.fusion
	uses := f.uses[tv]
	if len(uses) == 0 {
		exceptions.Panicf("TensorView.CacheAfter(%s): operand has no uses to cache for", tv.name)
	}
	cache := f.newTensorView(tv.dtype, f.cloneAxes(NoReductions(tv.MaybeRFactor())))
	for _, e := range uses {
		e.replaceInput(tv, cache)
	}
	f.uses[cache] = uses
	delete(f.uses, tv)
	f.addSet(tv, cache)
	return cache
}

// CacheBefore inserts a copy of tv between its definition and tv: the
// defining expression now writes to the cache and tv becomes a plain copy of
// it. The cache takes over tv's entire domain, schedule included, and tv is
// rebuilt with a fresh reduction-free root scheduled like the cache. Returns
// the new cache operand.
func (tv *TensorView) CacheBefore() *TensorView {
	f := tv.fusion
	def := f.definition[tv]
	if def == nil {
		exceptions.Panicf("TensorView.CacheBefore(%s): operand has no definition, cannot cache a fusion input", tv.name)
	}
	cache := f.newTensorView(tv.dtype, tv.root)
	cache.rfactor = tv.rfactor
	cache.leaf = tv.leaf
	cache.history = tv.history
	cache.rfactorRecords = tv.rfactorRecords
	cache.contiguity = tv.contiguity
	cache.computeAtPos = tv.computeAtPos
	cache.axes = tv.axes

	newRoot := f.cloneAxes(NoReductions(cache.MaybeRFactor()))
	tv.root = newRoot
	tv.rfactor = nil
	tv.rfactorRecords = 0
	tv.history = nil
	tv.leaf = append([]*IterDomain{}, newRoot...)
	tv.contiguity = xslices.SliceWithValue(len(newRoot), true)
	tv.computeAtPos = 0
	tv.axes = make(map[int]*IterDomain, len(newRoot))
	for _, d := range newRoot {
		tv.axes[d.id] = d
	}

	f.definition[cache] = def
	delete(f.definition, tv)
	def.replaceOutput(tv, cache)
	f.addSet(cache, tv)
	SelfReplay(tv, cache)
	return cache
}

// CacheFork duplicates a fusion output that also feeds further computation:
// the fork becomes the new global-memory output while tv moves to local
// memory, feeding its consumers. Returns the new output operand.
func (tv *TensorView) CacheFork() *TensorView {
	f := tv.fusion
	if !tv.IsFusionOutput() {
		exceptions.Panicf("TensorView.CacheFork(%s): only fusion outputs can be forked", tv.name)
	}
	if len(f.uses[tv]) == 0 {
		exceptions.Panicf("TensorView.CacheFork(%s): output has no other uses, nothing to fork", tv.name)
	}
	newOut := f.newTensorView(tv.dtype, f.cloneAxes(NoReductions(tv.MaybeRFactor())))
	f.addSet(tv, newOut)
	f.ReplaceOutput(tv, newOut)
	tv.memorySpace = MemoryLocal
	SelfReplay(newOut, tv)
	return newOut
}
