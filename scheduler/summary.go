// Copyright 2024-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"github.com/gomlx/exceptions"
	"github.com/google/uuid"

	"github.com/gomlx/gofuser/fusion"
)

// HeuristicSummary memoizes the fusion-level analyses a heuristic queries
// repeatedly while searching the schedule space. The caller owns it and
// passes it to the analyses that accept one; a nil summary disables
// memoization. A summary is tied to the fusion it was created for and
// panics if used with another.
type HeuristicSummary struct {
	fusionID uuid.UUID
	entries  map[entryKind]any
}

type entryKind int

const (
	entryReductionTVs entryKind = iota
	entryPersistentBuffers
	entryScopePersistentFactors
	entryVectorizableInputsOutputs
	entryUnrollableInputsOutputs
	entryBroadcastMultiples
)

// NewHeuristicSummary creates an empty summary for f.
func NewHeuristicSummary(f *fusion.Fusion) *HeuristicSummary {
	return &HeuristicSummary{fusionID: f.ID(), entries: make(map[entryKind]any)}
}

func (hs *HeuristicSummary) check(f *fusion.Fusion) {
	if hs.fusionID != f.ID() {
		exceptions.Panicf("scheduler: HeuristicSummary built for fusion %s used with fusion %s",
			hs.fusionID, f.ID())
	}
}

// summaryEntry returns the value cached under kind, computing and storing it
// on first use. With a nil summary it just computes.
func summaryEntry[T any](hs *HeuristicSummary, f *fusion.Fusion, kind entryKind, compute func() T) T {
	if hs == nil {
		return compute()
	}
	hs.check(f)
	if got, found := hs.entries[kind]; found {
		return got.(T)
	}
	value := compute()
	hs.entries[kind] = value
	return value
}
